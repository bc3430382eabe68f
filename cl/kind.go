package cl

import "github.com/gomlx/gocl/clapi"

// Kind is the closed set of OpenCL object kinds tracked by the bindings.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind -transform=lower -values -output=gen_kind_enumer.go kind.go

const (
	KindPlatform Kind = iota
	KindDevice
	KindContext
	KindQueue
	KindBuffer
	KindImage
	KindPipe
	KindSampler
	KindProgram
	KindKernel
	KindEvent
	KindSVM
)

// class returns the family of native entry points used to query/retain/release objects of this kind.
// counted is false for kinds without a native reference count.
func (k Kind) class() (class clapi.Class, counted bool) {
	switch k {
	case KindPlatform:
		return clapi.ClassPlatform, false
	case KindDevice:
		return clapi.ClassDevice, true
	case KindContext:
		return clapi.ClassContext, true
	case KindQueue:
		return clapi.ClassCommandQueue, true
	case KindBuffer, KindImage, KindPipe:
		return clapi.ClassMem, true
	case KindSampler:
		return clapi.ClassSampler, true
	case KindProgram:
		return clapi.ClassProgram, true
	case KindKernel:
		return clapi.ClassKernel, true
	case KindEvent:
		return clapi.ClassEvent, true
	}
	return 0, false
}

// childKinds lists, in teardown order, the kinds of objects that may have an object of this kind as parent.
var childKinds = map[Kind][]Kind{
	KindPlatform: {KindContext, KindDevice},
	KindDevice:   {KindDevice},
	KindContext:  {KindQueue, KindProgram, KindEvent, KindPipe, KindImage, KindBuffer, KindSampler, KindSVM},
	KindBuffer:   {KindBuffer},
	KindProgram:  {KindKernel},
}
