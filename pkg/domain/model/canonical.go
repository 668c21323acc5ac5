// 指示: miu200521358
package model

// CanonicalJoint は正規化ヒューマノイドの関節名を表す。
type CanonicalJoint string

const (
	JointHips         CanonicalJoint = "hips"
	JointSpine        CanonicalJoint = "spine"
	JointSpine1       CanonicalJoint = "spine1"
	JointSpine2       CanonicalJoint = "spine2"
	JointNeck         CanonicalJoint = "neck"
	JointHead         CanonicalJoint = "head"
	JointLeftArm      CanonicalJoint = "leftArm"
	JointLeftForeArm  CanonicalJoint = "leftForeArm"
	JointLeftHand     CanonicalJoint = "leftHand"
	JointRightArm     CanonicalJoint = "rightArm"
	JointRightForeArm CanonicalJoint = "rightForeArm"
	JointRightHand    CanonicalJoint = "rightHand"
	JointLeftUpLeg    CanonicalJoint = "leftUpLeg"
	JointLeftLeg      CanonicalJoint = "leftLeg"
	JointLeftFoot     CanonicalJoint = "leftFoot"
	JointRightUpLeg   CanonicalJoint = "rightUpLeg"
	JointRightLeg     CanonicalJoint = "rightLeg"
	JointRightFoot    CanonicalJoint = "rightFoot"
)

// String は関節名を返す。
func (j CanonicalJoint) String() string {
	return string(j)
}

// CanonicalJoints は正規化関節の固定順序。入力の優先順位や出力順はこの順に従う。
var CanonicalJoints = []CanonicalJoint{
	JointHips,
	JointSpine,
	JointSpine1,
	JointSpine2,
	JointNeck,
	JointHead,
	JointLeftArm,
	JointLeftForeArm,
	JointLeftHand,
	JointRightArm,
	JointRightForeArm,
	JointRightHand,
	JointLeftUpLeg,
	JointLeftLeg,
	JointLeftFoot,
	JointRightUpLeg,
	JointRightLeg,
	JointRightFoot,
}

// IsCanonical は関節名が正規化関節か判定する。
func (j CanonicalJoint) IsCanonical() bool {
	_, ok := canonicalParents[j]
	return ok
}

// canonicalParents は正規化階層上の親関節。hips は親なし。
var canonicalParents = map[CanonicalJoint]CanonicalJoint{
	JointHips:         "",
	JointSpine:        JointHips,
	JointSpine1:       JointSpine,
	JointSpine2:       JointSpine1,
	JointNeck:         JointSpine2,
	JointHead:         JointNeck,
	JointLeftArm:      JointSpine2,
	JointLeftForeArm:  JointLeftArm,
	JointLeftHand:     JointLeftForeArm,
	JointRightArm:     JointSpine2,
	JointRightForeArm: JointRightArm,
	JointRightHand:    JointRightForeArm,
	JointLeftUpLeg:    JointHips,
	JointLeftLeg:      JointLeftUpLeg,
	JointLeftFoot:     JointLeftLeg,
	JointRightUpLeg:   JointHips,
	JointRightLeg:     JointRightUpLeg,
	JointRightFoot:    JointRightLeg,
}

// canonicalChildren は角度算出に使う子関節。末端は子なし。
var canonicalChildren = map[CanonicalJoint]CanonicalJoint{
	JointHips:         JointSpine,
	JointSpine:        JointSpine1,
	JointSpine1:       JointSpine2,
	JointSpine2:       JointNeck,
	JointNeck:         JointHead,
	JointLeftArm:      JointLeftForeArm,
	JointLeftForeArm:  JointLeftHand,
	JointRightArm:     JointRightForeArm,
	JointRightForeArm: JointRightHand,
	JointLeftUpLeg:    JointLeftLeg,
	JointLeftLeg:      JointLeftFoot,
	JointRightUpLeg:   JointRightLeg,
	JointRightLeg:     JointRightFoot,
}

// Parent は正規化階層上の親関節を返す。
func (j CanonicalJoint) Parent() (CanonicalJoint, bool) {
	parent, ok := canonicalParents[j]
	if !ok || parent == "" {
		return "", false
	}
	return parent, true
}

// Child は角度算出に使う子関節を返す。
func (j CanonicalJoint) Child() (CanonicalJoint, bool) {
	child, ok := canonicalChildren[j]
	return child, ok
}

// canonicalFallbacks は欠損関節の代替候補を優先順に保持する。
var canonicalFallbacks = map[CanonicalJoint][]CanonicalJoint{
	JointSpine:        {JointHips},
	JointSpine1:       {JointSpine, JointHips},
	JointSpine2:       {JointSpine1, JointSpine, JointHips},
	JointNeck:         {JointSpine2, JointSpine1, JointSpine},
	JointHead:         {JointNeck, JointSpine2, JointSpine1},
	JointLeftForeArm:  {JointLeftArm},
	JointLeftHand:     {JointLeftForeArm, JointLeftArm},
	JointRightForeArm: {JointRightArm},
	JointRightHand:    {JointRightForeArm, JointRightArm},
	JointLeftLeg:      {JointLeftUpLeg},
	JointLeftFoot:     {JointLeftLeg, JointLeftUpLeg},
	JointRightLeg:     {JointRightUpLeg},
	JointRightFoot:    {JointRightLeg, JointRightUpLeg},
}

// Fallbacks は代替候補を返す。
func (j CanonicalJoint) Fallbacks() []CanonicalJoint {
	return canonicalFallbacks[j]
}

// sideSwaps は左右反転時の対応関節。
var sideSwaps = map[CanonicalJoint]CanonicalJoint{
	JointLeftArm:      JointRightArm,
	JointLeftForeArm:  JointRightForeArm,
	JointLeftHand:     JointRightHand,
	JointLeftUpLeg:    JointRightUpLeg,
	JointLeftLeg:      JointRightLeg,
	JointLeftFoot:     JointRightFoot,
	JointRightArm:     JointLeftArm,
	JointRightForeArm: JointLeftForeArm,
	JointRightHand:    JointLeftHand,
	JointRightUpLeg:   JointLeftUpLeg,
	JointRightLeg:     JointLeftLeg,
	JointRightFoot:    JointLeftFoot,
}

// Mirrored は左右反対側の関節を返す。体幹は自身を返す。
func (j CanonicalJoint) Mirrored() CanonicalJoint {
	if mirrored, ok := sideSwaps[j]; ok {
		return mirrored
	}
	return j
}

// defaultJointAliases は一般的なモーションキャプチャ命名の既定別名。
var defaultJointAliases = map[CanonicalJoint][]string{
	JointHips:         {"mixamorig:hips", "hips", "hip", "pelvis", "root", "centerhips"},
	JointSpine:        {"mixamorig:spine", "spine", "spine0", "spine_01", "abdomen"},
	JointSpine1:       {"mixamorig:spine1", "spine1", "spine_02", "chest"},
	JointSpine2:       {"mixamorig:spine2", "spine2", "spine_03", "upperchest"},
	JointNeck:         {"mixamorig:neck", "neck", "neck1"},
	JointHead:         {"mixamorig:head", "head", "headtop"},
	JointLeftArm:      {"mixamorig:leftarm", "leftarm", "larm", "arm_l", "lupperarm", "leftshoulder", "lshldr", "lshoulder"},
	JointLeftForeArm:  {"mixamorig:leftforearm", "leftforearm", "lforearm", "forearm_l", "lfore_arm"},
	JointLeftHand:     {"mixamorig:lefthand", "lefthand", "lhand", "hand_l", "leftpalm", "lpalm"},
	JointRightArm:     {"mixamorig:rightarm", "rightarm", "rarm", "arm_r", "rupperarm", "rightshoulder", "rshldr", "rshoulder"},
	JointRightForeArm: {"mixamorig:rightforearm", "rightforearm", "rforearm", "forearm_r", "rfore_arm"},
	JointRightHand:    {"mixamorig:righthand", "righthand", "rhand", "hand_r", "rightpalm", "rpalm"},
	JointLeftUpLeg:    {"mixamorig:leftupleg", "leftupleg", "lthigh", "upleg_l", "leftthigh", "leftupperleg"},
	JointLeftLeg:      {"mixamorig:leftleg", "leftleg", "lleg", "calf_l", "leftcalf", "leftshin", "lshin"},
	JointLeftFoot:     {"mixamorig:leftfoot", "leftfoot", "lfoot", "foot_l", "leftankle"},
	JointRightUpLeg:   {"mixamorig:rightupleg", "rightupleg", "rthigh", "upleg_r", "rightthigh", "rightupperleg"},
	JointRightLeg:     {"mixamorig:rightleg", "rightleg", "rleg", "calf_r", "rightcalf", "rightshin", "rshin"},
	JointRightFoot:    {"mixamorig:rightfoot", "rightfoot", "rfoot", "foot_r", "rightankle"},
}

// DefaultAliases は関節の既定別名一覧の複製を返す。
func DefaultAliases(joint CanonicalJoint) []string {
	aliases := defaultJointAliases[joint]
	out := make([]string, len(aliases))
	copy(out, aliases)
	return out
}
