// Package dlive encodes console commands as dLive MIDI messages
package dlive

import (
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/console"
)

// dLive MIDI constants
const (
	DefaultPort = 51325 // MixRack / surface MIDI over TCP

	BaseChannelMin = 1 // operator-facing base MIDI channel
	BaseChannelMax = 12

	VelocityOn  = 0x7F
	VelocityOff = 0x3F
)

// Allen & Heath SysEx header for dLive, without the leading 0xF0
var sysExHeader = []byte{0x00, 0x00, 0x1A, 0x50, 0x10, 0x01, 0x00}

// NRPN controllers
const (
	ccNRPNMSB         = 0x63
	ccNRPNLSB         = 0x62
	ccDataEntry       = 0x06
	ccDataEntryLSB    = 0x26
	ccBankSelect      = 0x00
	paramFaderLevel   = 0x17
	paramMainMix      = 0x18
	paramPreampGain   = 0x19
	paramPreampPad    = 0x1A
	paramPreamp48v    = 0x1B
	paramHPFFrequency = 0x20
	paramHPFOnOff     = 0x21
	paramEQBase       = 0x30 // band b uses paramEQBase + 4*b + {type, frequency, width, gain}
	paramAssign       = 0x40 // DCA and mute group assignment
	paramSystem       = 0x7E // UFX globals
	paramCueRecall    = 0x7F
)

// SysEx message types
const (
	sysExName      = 0x03
	sysExColour    = 0x06
	sysExRouteOn   = 0x0C
	sysExSendLevel = 0x0D
)

// Data values of the system and assignment parameters
const (
	systemUFXKey      = 0x01
	systemUFXScale    = 0x02
	assignDCAOff      = 0x00
	assignDCAOn       = 0x40
	assignMuteGroup   = 0x18
	assignMuteGroupOn = 0x58
)

// address is where a channel kind lives on the wire: a MIDI channel offset
// from the base channel and the note of its first channel
type address struct {
	offset uint8
	note   uint8
}

var channelAddresses = map[console.ChannelKind]address{
	console.Input:           {0, 0x00},
	console.MonoGroup:       {1, 0x00},
	console.StereoGroup:     {1, 0x40},
	console.MonoAux:         {2, 0x00},
	console.StereoAux:       {2, 0x40},
	console.MonoMatrix:      {3, 0x00},
	console.StereoMatrix:    {3, 0x40},
	console.MonoFXSend:      {4, 0x00},
	console.StereoFXSend:    {4, 0x10},
	console.FXReturn:        {4, 0x20},
	console.DCA:             {4, 0x36},
	console.MuteGroup:       {4, 0x4E},
	console.StereoUFXSend:   {4, 0x56},
	console.StereoUFXReturn: {4, 0x5E},
}

var socketAddresses = map[console.SocketKind]address{
	console.MixRackSocket: {0, 0x00},
	console.DXCardSocket:  {0, 0x40},
}

const ufxOffset = 4

// eqTypes are the wire values of the EQ filter shapes
var eqTypes = map[console.EQType]uint8{
	console.EQTypeLFShelf:  0x00,
	console.EQTypeHFShelf:  0x01,
	console.EQTypeBell:     0x02,
	console.EQTypeHighPass: 0x03,
	console.EQTypeLowPass:  0x04,
}
