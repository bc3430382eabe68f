package clapi

import "fmt"

// Status is the cl_int status code returned by every OpenCL entry point.
// Negative values are errors; CL_SUCCESS is 0.
type Status int32

// Status codes defined by the OpenCL headers (cl.h, cl_gl.h, cl_egl.h).
// CL_ILLEGAL_READ_OR_WRITE is not part of the headers, but some NVidia drivers return it on out-of-bounds accesses.
const (
	CL_SUCCESS                                   Status = 0
	CL_DEVICE_NOT_FOUND                          Status = -1
	CL_DEVICE_NOT_AVAILABLE                      Status = -2
	CL_COMPILER_NOT_AVAILABLE                    Status = -3
	CL_MEM_OBJECT_ALLOCATION_FAILURE             Status = -4
	CL_OUT_OF_RESOURCES                          Status = -5
	CL_OUT_OF_HOST_MEMORY                        Status = -6
	CL_PROFILING_INFO_NOT_AVAILABLE              Status = -7
	CL_MEM_COPY_OVERLAP                          Status = -8
	CL_IMAGE_FORMAT_MISMATCH                     Status = -9
	CL_IMAGE_FORMAT_NOT_SUPPORTED                Status = -10
	CL_BUILD_PROGRAM_FAILURE                     Status = -11
	CL_MAP_FAILURE                               Status = -12
	CL_MISALIGNED_SUB_BUFFER_OFFSET              Status = -13
	CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST Status = -14
	CL_COMPILE_PROGRAM_FAILURE                   Status = -15
	CL_LINKER_NOT_AVAILABLE                      Status = -16
	CL_LINK_PROGRAM_FAILURE                      Status = -17
	CL_DEVICE_PARTITION_FAILED                   Status = -18
	CL_KERNEL_ARG_INFO_NOT_AVAILABLE             Status = -19
	CL_INVALID_VALUE                             Status = -30
	CL_INVALID_DEVICE_TYPE                       Status = -31
	CL_INVALID_PLATFORM                          Status = -32
	CL_INVALID_DEVICE                            Status = -33
	CL_INVALID_CONTEXT                           Status = -34
	CL_INVALID_QUEUE_PROPERTIES                  Status = -35
	CL_INVALID_COMMAND_QUEUE                     Status = -36
	CL_INVALID_HOST_PTR                          Status = -37
	CL_INVALID_MEM_OBJECT                        Status = -38
	CL_INVALID_IMAGE_FORMAT_DESCRIPTOR           Status = -39
	CL_INVALID_IMAGE_SIZE                        Status = -40
	CL_INVALID_SAMPLER                           Status = -41
	CL_INVALID_BINARY                            Status = -42
	CL_INVALID_BUILD_OPTIONS                     Status = -43
	CL_INVALID_PROGRAM                           Status = -44
	CL_INVALID_PROGRAM_EXECUTABLE                Status = -45
	CL_INVALID_KERNEL_NAME                       Status = -46
	CL_INVALID_KERNEL_DEFINITION                 Status = -47
	CL_INVALID_KERNEL                            Status = -48
	CL_INVALID_ARG_INDEX                         Status = -49
	CL_INVALID_ARG_VALUE                         Status = -50
	CL_INVALID_ARG_SIZE                          Status = -51
	CL_INVALID_KERNEL_ARGS                       Status = -52
	CL_INVALID_WORK_DIMENSION                    Status = -53
	CL_INVALID_WORK_GROUP_SIZE                   Status = -54
	CL_INVALID_WORK_ITEM_SIZE                    Status = -55
	CL_INVALID_GLOBAL_OFFSET                     Status = -56
	CL_INVALID_EVENT_WAIT_LIST                   Status = -57
	CL_INVALID_EVENT                             Status = -58
	CL_INVALID_OPERATION                         Status = -59
	CL_INVALID_GL_OBJECT                         Status = -60
	CL_INVALID_BUFFER_SIZE                       Status = -61
	CL_INVALID_MIP_LEVEL                         Status = -62
	CL_INVALID_GLOBAL_WORK_SIZE                  Status = -63
	CL_INVALID_PROPERTY                          Status = -64
	CL_INVALID_IMAGE_DESCRIPTOR                  Status = -65
	CL_INVALID_COMPILER_OPTIONS                  Status = -66
	CL_INVALID_LINKER_OPTIONS                    Status = -67
	CL_INVALID_DEVICE_PARTITION_COUNT            Status = -68
	CL_INVALID_PIPE_SIZE                         Status = -69
	CL_INVALID_DEVICE_QUEUE                      Status = -70
	CL_INVALID_SPEC_ID                           Status = -71
	CL_MAX_SIZE_RESTRICTION_EXCEEDED             Status = -72
	CL_INVALID_GL_SHAREGROUP_REFERENCE_KHR       Status = -1000
	CL_PLATFORM_NOT_FOUND_KHR                    Status = -1001
	CL_INVALID_EGL_OBJECT_KHR                    Status = -1093
	CL_EGL_RESOURCE_NOT_ACQUIRED_KHR             Status = -1092
	CL_ILLEGAL_READ_OR_WRITE                     Status = -9999
)

type statusInfo struct {
	name, description string
}

var statusTable = map[Status]statusInfo{
	CL_SUCCESS:                                   {"CL_SUCCESS", "success"},
	CL_DEVICE_NOT_FOUND:                          {"CL_DEVICE_NOT_FOUND", "device not found"},
	CL_DEVICE_NOT_AVAILABLE:                      {"CL_DEVICE_NOT_AVAILABLE", "device not available"},
	CL_COMPILER_NOT_AVAILABLE:                    {"CL_COMPILER_NOT_AVAILABLE", "compiler not available"},
	CL_MEM_OBJECT_ALLOCATION_FAILURE:             {"CL_MEM_OBJECT_ALLOCATION_FAILURE", "mem object allocation failure"},
	CL_OUT_OF_RESOURCES:                          {"CL_OUT_OF_RESOURCES", "out of resources"},
	CL_OUT_OF_HOST_MEMORY:                        {"CL_OUT_OF_HOST_MEMORY", "out of host memory"},
	CL_PROFILING_INFO_NOT_AVAILABLE:              {"CL_PROFILING_INFO_NOT_AVAILABLE", "profiling info not available"},
	CL_MEM_COPY_OVERLAP:                          {"CL_MEM_COPY_OVERLAP", "mem copy overlap"},
	CL_IMAGE_FORMAT_MISMATCH:                     {"CL_IMAGE_FORMAT_MISMATCH", "image format mismatch"},
	CL_IMAGE_FORMAT_NOT_SUPPORTED:                {"CL_IMAGE_FORMAT_NOT_SUPPORTED", "image format not supported"},
	CL_BUILD_PROGRAM_FAILURE:                     {"CL_BUILD_PROGRAM_FAILURE", "build program failure"},
	CL_MAP_FAILURE:                               {"CL_MAP_FAILURE", "map failure"},
	CL_MISALIGNED_SUB_BUFFER_OFFSET:              {"CL_MISALIGNED_SUB_BUFFER_OFFSET", "misaligned sub buffer offset"},
	CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST: {"CL_EXEC_STATUS_ERROR_FOR_EVENTS_IN_WAIT_LIST", "exec status error for events in wait list"},
	CL_COMPILE_PROGRAM_FAILURE:                   {"CL_COMPILE_PROGRAM_FAILURE", "compile program failure"},
	CL_LINKER_NOT_AVAILABLE:                      {"CL_LINKER_NOT_AVAILABLE", "linker not available"},
	CL_LINK_PROGRAM_FAILURE:                      {"CL_LINK_PROGRAM_FAILURE", "link program failure"},
	CL_DEVICE_PARTITION_FAILED:                   {"CL_DEVICE_PARTITION_FAILED", "device partition failed"},
	CL_KERNEL_ARG_INFO_NOT_AVAILABLE:             {"CL_KERNEL_ARG_INFO_NOT_AVAILABLE", "kernel arg info not available"},
	CL_INVALID_VALUE:                             {"CL_INVALID_VALUE", "invalid value"},
	CL_INVALID_DEVICE_TYPE:                       {"CL_INVALID_DEVICE_TYPE", "invalid device type"},
	CL_INVALID_PLATFORM:                          {"CL_INVALID_PLATFORM", "invalid platform"},
	CL_INVALID_DEVICE:                            {"CL_INVALID_DEVICE", "invalid device"},
	CL_INVALID_CONTEXT:                           {"CL_INVALID_CONTEXT", "invalid context"},
	CL_INVALID_QUEUE_PROPERTIES:                  {"CL_INVALID_QUEUE_PROPERTIES", "invalid queue properties"},
	CL_INVALID_COMMAND_QUEUE:                     {"CL_INVALID_COMMAND_QUEUE", "invalid command queue"},
	CL_INVALID_HOST_PTR:                          {"CL_INVALID_HOST_PTR", "invalid host ptr"},
	CL_INVALID_MEM_OBJECT:                        {"CL_INVALID_MEM_OBJECT", "invalid mem object"},
	CL_INVALID_IMAGE_FORMAT_DESCRIPTOR:           {"CL_INVALID_IMAGE_FORMAT_DESCRIPTOR", "invalid image format descriptor"},
	CL_INVALID_IMAGE_SIZE:                        {"CL_INVALID_IMAGE_SIZE", "invalid image size"},
	CL_INVALID_SAMPLER:                           {"CL_INVALID_SAMPLER", "invalid sampler"},
	CL_INVALID_BINARY:                            {"CL_INVALID_BINARY", "invalid binary"},
	CL_INVALID_BUILD_OPTIONS:                     {"CL_INVALID_BUILD_OPTIONS", "invalid build options"},
	CL_INVALID_PROGRAM:                           {"CL_INVALID_PROGRAM", "invalid program"},
	CL_INVALID_PROGRAM_EXECUTABLE:                {"CL_INVALID_PROGRAM_EXECUTABLE", "invalid program executable"},
	CL_INVALID_KERNEL_NAME:                       {"CL_INVALID_KERNEL_NAME", "invalid kernel name"},
	CL_INVALID_KERNEL_DEFINITION:                 {"CL_INVALID_KERNEL_DEFINITION", "invalid kernel definition"},
	CL_INVALID_KERNEL:                            {"CL_INVALID_KERNEL", "invalid kernel"},
	CL_INVALID_ARG_INDEX:                         {"CL_INVALID_ARG_INDEX", "invalid arg index"},
	CL_INVALID_ARG_VALUE:                         {"CL_INVALID_ARG_VALUE", "invalid arg value"},
	CL_INVALID_ARG_SIZE:                          {"CL_INVALID_ARG_SIZE", "invalid arg size"},
	CL_INVALID_KERNEL_ARGS:                       {"CL_INVALID_KERNEL_ARGS", "invalid kernel args"},
	CL_INVALID_WORK_DIMENSION:                    {"CL_INVALID_WORK_DIMENSION", "invalid work dimension"},
	CL_INVALID_WORK_GROUP_SIZE:                   {"CL_INVALID_WORK_GROUP_SIZE", "invalid work group size"},
	CL_INVALID_WORK_ITEM_SIZE:                    {"CL_INVALID_WORK_ITEM_SIZE", "invalid work item size"},
	CL_INVALID_GLOBAL_OFFSET:                     {"CL_INVALID_GLOBAL_OFFSET", "invalid global offset"},
	CL_INVALID_EVENT_WAIT_LIST:                   {"CL_INVALID_EVENT_WAIT_LIST", "invalid event wait list"},
	CL_INVALID_EVENT:                             {"CL_INVALID_EVENT", "invalid event"},
	CL_INVALID_OPERATION:                         {"CL_INVALID_OPERATION", "invalid operation"},
	CL_INVALID_GL_OBJECT:                         {"CL_INVALID_GL_OBJECT", "invalid gl object"},
	CL_INVALID_BUFFER_SIZE:                       {"CL_INVALID_BUFFER_SIZE", "invalid buffer size"},
	CL_INVALID_MIP_LEVEL:                         {"CL_INVALID_MIP_LEVEL", "invalid mip level"},
	CL_INVALID_GLOBAL_WORK_SIZE:                  {"CL_INVALID_GLOBAL_WORK_SIZE", "invalid global work size"},
	CL_INVALID_PROPERTY:                          {"CL_INVALID_PROPERTY", "invalid property"},
	CL_INVALID_IMAGE_DESCRIPTOR:                  {"CL_INVALID_IMAGE_DESCRIPTOR", "invalid image descriptor"},
	CL_INVALID_COMPILER_OPTIONS:                  {"CL_INVALID_COMPILER_OPTIONS", "invalid compiler options"},
	CL_INVALID_LINKER_OPTIONS:                    {"CL_INVALID_LINKER_OPTIONS", "invalid linker options"},
	CL_INVALID_DEVICE_PARTITION_COUNT:            {"CL_INVALID_DEVICE_PARTITION_COUNT", "invalid device partition count"},
	CL_INVALID_PIPE_SIZE:                         {"CL_INVALID_PIPE_SIZE", "invalid pipe size"},
	CL_INVALID_DEVICE_QUEUE:                      {"CL_INVALID_DEVICE_QUEUE", "invalid device queue"},
	CL_INVALID_SPEC_ID:                           {"CL_INVALID_SPEC_ID", "invalid spec id"},
	CL_MAX_SIZE_RESTRICTION_EXCEEDED:             {"CL_MAX_SIZE_RESTRICTION_EXCEEDED", "max size restriction exceeded"},
	CL_INVALID_GL_SHAREGROUP_REFERENCE_KHR:       {"CL_INVALID_GL_SHAREGROUP_REFERENCE_KHR", "invalid gl sharegroup reference"},
	CL_PLATFORM_NOT_FOUND_KHR:                    {"CL_PLATFORM_NOT_FOUND_KHR", "platform not found"},
	CL_INVALID_EGL_OBJECT_KHR:                    {"CL_INVALID_EGL_OBJECT_KHR", "invalid egl object"},
	CL_EGL_RESOURCE_NOT_ACQUIRED_KHR:             {"CL_EGL_RESOURCE_NOT_ACQUIRED_KHR", "egl resource not acquired"},
	CL_ILLEGAL_READ_OR_WRITE:                     {"CL_ILLEGAL_READ_OR_WRITE", "illegal read or write to a buffer"},
}

// Name returns the symbolic name of the status code (e.g. "CL_INVALID_VALUE"), or "" if the code is unknown.
func (s Status) Name() string {
	return statusTable[s].name
}

// String returns a human-readable description of the status code.
func (s Status) String() string {
	if info, found := statusTable[s]; found {
		return info.description
	}
	return fmt.Sprintf("unknown OpenCL error code %d", int32(s))
}

// Ok returns whether s is CL_SUCCESS.
func (s Status) Ok() bool { return s == CL_SUCCESS }
