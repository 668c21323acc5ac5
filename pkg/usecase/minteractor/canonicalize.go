// 指示: miu200521358
package minteractor

import (
	"fmt"
	"strings"

	"github.com/miu200521358/mu_mocap2spine/pkg/domain/model"
	"github.com/miu200521358/mu_mocap2spine/pkg/infra/logging"
)

type normalizedTrack struct {
	track          *model.JointTrack
	normalizedName string
}

// buildAliasSet は別名一覧を正規化名の集合にする。
func buildAliasSet(aliases []string) map[string]struct{} {
	set := make(map[string]struct{}, len(aliases))
	for _, alias := range aliases {
		if normalized := normalizeName(alias); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

// Canonicalize はソース関節名を正規化ヒューマノイドへ対応付ける。
// 別名の上書きは関節単位で既定の別名を置き換える。入力順で先に一致したトラックを採用する。
func Canonicalize(motion *model.DecodedMotion, aliasOverrides map[model.CanonicalJoint][]string) *model.CanonicalHumanoid {
	humanoid := &model.CanonicalHumanoid{
		Tracks:                 make(map[model.CanonicalJoint]*model.CanonicalTrack, len(model.CanonicalJoints)),
		Mapping:                make(map[model.CanonicalJoint]string, len(model.CanonicalJoints)),
		MissingCanonicalJoints: []model.CanonicalJoint{},
		Warnings:               []string{},
	}
	if motion == nil {
		return humanoid
	}
	humanoid.Fps = motion.Fps
	humanoid.Duration = motion.Duration
	humanoid.FrameTimes = motion.FrameTimes
	humanoid.Warnings = append(humanoid.Warnings, motion.Warnings...)

	tracks := motion.OrderedTracks()
	entries := make([]normalizedTrack, 0, len(tracks))
	for _, track := range tracks {
		entries = append(entries, normalizedTrack{track: track, normalizedName: normalizeName(track.Name)})
	}

	unresolved := make([]model.CanonicalJoint, 0)
	for _, joint := range model.CanonicalJoints {
		aliases, overridden := aliasOverrides[joint]
		if !overridden {
			aliases = model.DefaultAliases(joint)
		}
		aliasSet := buildAliasSet(aliases)
		matched := findTrackByAliases(entries, aliasSet)
		if matched == nil {
			unresolved = append(unresolved, joint)
			continue
		}
		humanoid.Tracks[joint] = &model.CanonicalTrack{
			Joint:      joint,
			SourceName: matched.Name,
			ParentName: matched.ParentName,
			Positions:  matched.Positions,
			Rotations:  matched.Rotations,
		}
		humanoid.Mapping[joint] = matched.Name
		logging.DefaultLogger().Debug("正規化関節対応: %s <- %s", joint, matched.Name)
	}

	for _, joint := range unresolved {
		var fallback *model.CanonicalTrack
		for _, candidate := range joint.Fallbacks() {
			if track, ok := humanoid.Tracks[candidate]; ok {
				fallback = track
				break
			}
		}
		if fallback == nil {
			humanoid.MissingCanonicalJoints = append(humanoid.MissingCanonicalJoints, joint)
			continue
		}
		humanoid.Tracks[joint] = &model.CanonicalTrack{
			Joint:       joint,
			SourceName:  fallback.SourceName,
			ParentName:  fallback.ParentName,
			Positions:   fallback.Positions,
			Rotations:   fallback.Rotations,
			DerivedFrom: fallback.Joint,
		}
		humanoid.Mapping[joint] = fallback.SourceName
		humanoid.Warnings = append(humanoid.Warnings, fmt.Sprintf(
			"Canonical joint \"%s\" was missing; reusing \"%s\" source track \"%s\".",
			joint, fallback.Joint, fallback.SourceName,
		))
	}

	if len(humanoid.MissingCanonicalJoints) > 0 {
		humanoid.Warnings = append(humanoid.Warnings, fmt.Sprintf(
			"Missing canonical joints: %s", strings.Join(humanoid.MissingJointNames(), ", "),
		))
	}
	logging.DefaultLogger().Info(
		"関節正規化完了: 対応=%d 欠損=%d", len(humanoid.Mapping), len(humanoid.MissingCanonicalJoints),
	)
	return humanoid
}

// findTrackByAliases は別名集合に最初に一致したトラックを返す。
func findTrackByAliases(entries []normalizedTrack, aliasSet map[string]struct{}) *model.JointTrack {
	if len(aliasSet) == 0 {
		return nil
	}
	for _, entry := range entries {
		if _, ok := aliasSet[entry.normalizedName]; ok {
			return entry.track
		}
	}
	return nil
}
