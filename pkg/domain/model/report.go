// 指示: miu200521358
package model

// SkeletonConversionReport はスケルトン変換1回分の結果。
type SkeletonConversionReport struct {
	Mode                    string   `json:"mode"`
	AddedBones              []string `json:"addedBones"`
	RemappedReferences      int      `json:"remappedReferences"`
	CompatibilityBonesAdded []string `json:"compatibilityBonesAdded"`
	Warnings                []string `json:"warnings"`
}

// NewSkeletonConversionReport は空の変換結果を生成する。
func NewSkeletonConversionReport(mode string) *SkeletonConversionReport {
	return &SkeletonConversionReport{
		Mode:                    mode,
		AddedBones:              []string{},
		CompatibilityBonesAdded: []string{},
		Warnings:                []string{},
	}
}

// SkeletonConversionSettings はレポートに記録する変換設定。
type SkeletonConversionSettings struct {
	Enabled        bool   `json:"enabled"`
	Mode           string `json:"mode"`
	Scope          string `json:"scope"`
	MismatchPolicy string `json:"mismatchPolicy"`
}

// BatchItem はバッチ内1ファイル分の結果。
type BatchItem struct {
	File                   string                    `json:"file"`
	Status                 string                    `json:"status"`
	AnimationName          string                    `json:"animationName,omitempty"`
	Duration               float64                   `json:"duration,omitempty"`
	MappedBones            []string                  `json:"mappedBones,omitempty"`
	MissingCanonicalJoints []string                  `json:"missingCanonicalJoints,omitempty"`
	Warnings               []string                  `json:"warnings"`
	SkeletonReport         *SkeletonConversionReport `json:"skeletonReport,omitempty"`
	Error                  string                    `json:"error,omitempty"`
	ErrorKind              string                    `json:"errorKind,omitempty"`
	ElapsedMs              int64                     `json:"elapsedMs"`
}

// BatchReport はバッチ全体のレポート。
type BatchReport struct {
	TargetSkeleton     string                     `json:"targetSkeleton"`
	ProfileID          string                     `json:"profileId"`
	GeneratedAt        string                     `json:"generatedAt"`
	Fps                float64                    `json:"fps"`
	RootMotion         string                     `json:"rootMotion"`
	SkeletonConversion SkeletonConversionSettings `json:"skeletonConversion"`
	FilesProcessed     int                        `json:"filesProcessed"`
	FilesSucceeded     int                        `json:"filesSucceeded"`
	FilesFailed        int                        `json:"filesFailed"`
	OutputPath         string                     `json:"outputPath"`
	Items              []BatchItem                `json:"items"`
}
