package console

// Channel counts of a dLive system
const (
	InputChannelCount    = 128
	MonoGroupCount       = 62
	StereoGroupCount     = 31
	MonoAuxCount         = 62
	StereoAuxCount       = 31
	MonoFXSendCount      = 16
	StereoFXSendCount    = 16
	FXReturnCount        = 16
	MonoMatrixCount      = 62
	StereoMatrixCount    = 31
	StereoUFXSendCount   = 8
	StereoUFXReturnCount = 8
	DCACount             = 24
	MuteGroupCount       = 8
)

// Socket counts
const (
	MixRackSocketCount = 64
	DXCardSocketCount  = 64
)

// Scene and cue list numbering
const (
	SceneCount = 500
	// Scenes below this index are reserved utility scenes and cannot be recalled
	ReservedSceneCount = 8
	CueListCount       = 2000
)

// Preamp limits in dB
const (
	PreampMinimumGain = 5.0
	PreampMaximumGain = 60.0
	PreampGainStep    = 0.5
)

// Parametric EQ limits
const (
	EQBandCount    = 4
	EQMinimumWidth = 0.1 // octaves
	EQMaximumWidth = 1.5
	EQMinimumGain  = -15.0 // dB
	EQMaximumGain  = 15.0
	EQGainStep     = 0.5
)

// MIDI ranges as presented to the operator
const (
	MIDIChannelMin = 1
	MIDIChannelMax = 16
	MIDIDataMax    = 127
)
