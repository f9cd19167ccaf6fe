package migrate

import "context"

type stepFunc func(ctx context.Context, e *env) error

var stepFuncs = map[StepID]stepFunc{
	StepLegacy:         legacyToV074,
	StepV082:           bumpOnly,
	StepV083:           gazeBaseData,
	StepV086:           topicFields,
	StepV087:           clampGaze,
	StepBytesToUnicode: bytesToUnicode,
	StepV091:           bumpOnly,
	StepV093:           floatNormPos,
	StepV094:           resaveObjects,
	StepV0913:          transcodeAudio,
	StepV0915:          notificationsAndIntrinsics,
	StepV13:            cam2TimeFiles,
	StepV14:            bumpOnly,
	StepV18:            splitPupilData,
	StepV19:            annotations,
	StepWorldless:      checkWorldless,
}
