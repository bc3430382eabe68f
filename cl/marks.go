package cl

import "strings"

// Marks is a set of independent boolean facts about an object.
type Marks uint32

const (
	// MarkHasSubDevices is set on a device that was partitioned with CreateSubDevices.
	MarkHasSubDevices Marks = 1 << iota

	// MarkSubDevice is set on devices created by partitioning another device.
	MarkSubDevice

	// MarkSubBuffer is set on buffers created as a region of another buffer.
	MarkSubBuffer

	// MarkAllocated is set on SVM regions allocated with Context.AllocSVM.
	MarkAllocated

	// MarkSVMDontFree makes the destruction of an SVM region skip clSVMFree: it's set when the free was enqueued.
	MarkSVMDontFree

	// MarkGLBuffer, MarkGLTexture and MarkGLRenderbuffer are set on memory objects created from OpenGL objects.
	MarkGLBuffer
	MarkGLTexture
	MarkGLRenderbuffer

	// MarkNativeDeleted is set on memory objects deleted by the runtime (see the destructor callback): their
	// handles are no longer valid, and they are not released again.
	MarkNativeDeleted
)

var markNames = []string{"has_sub_devices", "sub_device", "sub_buffer", "allocated", "svm_dont_free",
	"gl_buffer", "gl_texture", "gl_renderbuffer", "native_deleted"}

// Has returns whether all marks in m2 are set in m.
func (m Marks) Has(m2 Marks) bool {
	return m&m2 == m2
}

// HasAny returns whether any of the marks in m2 is set in m.
func (m Marks) HasAny(m2 Marks) bool {
	return m&m2 != 0
}

// String lists the names of the marks set, separated by "|".
func (m Marks) String() string {
	var parts []string
	for ii, name := range markNames {
		if m&(1<<ii) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
