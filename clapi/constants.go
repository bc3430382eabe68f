package clapi

// Values copied from the Khronos OpenCL headers (CL/cl.h, CL/cl_gl.h). Only the ones used by the bindings are listed.

// DeviceType is the cl_device_type bitfield.
type DeviceType uint64

const (
	DeviceTypeDefault     DeviceType = 1 << 0
	DeviceTypeCPU         DeviceType = 1 << 1
	DeviceTypeGPU         DeviceType = 1 << 2
	DeviceTypeAccelerator DeviceType = 1 << 3
	DeviceTypeCustom      DeviceType = 1 << 4
	DeviceTypeAll         DeviceType = 0xFFFFFFFF
)

// MemFlags is the cl_mem_flags bitfield.
type MemFlags uint64

const (
	MemReadWrite    MemFlags = 1 << 0
	MemWriteOnly    MemFlags = 1 << 1
	MemReadOnly     MemFlags = 1 << 2
	MemUseHostPtr   MemFlags = 1 << 3
	MemAllocHostPtr MemFlags = 1 << 4
	MemCopyHostPtr  MemFlags = 1 << 5

	MemSVMFineGrainBuffer MemFlags = 1 << 10
	MemSVMAtomics         MemFlags = 1 << 11
)

// MapFlags is the cl_map_flags bitfield.
type MapFlags uint64

const (
	MapRead                  MapFlags = 1 << 0
	MapWrite                 MapFlags = 1 << 1
	MapWriteInvalidateRegion MapFlags = 1 << 2
)

// MigrationFlags is the cl_mem_migration_flags bitfield.
type MigrationFlags uint64

const (
	MigrateMemObjectHost             MigrationFlags = 1 << 0
	MigrateMemObjectContentUndefined MigrationFlags = 1 << 1
)

// Command queue properties (cl_command_queue_properties).
const (
	QueueOutOfOrderExecModeEnable uint64 = 1 << 0
	QueueProfilingEnable          uint64 = 1 << 1
)

// Platform info.
const (
	CL_PLATFORM_PROFILE    uint32 = 0x0900
	CL_PLATFORM_VERSION    uint32 = 0x0901
	CL_PLATFORM_NAME       uint32 = 0x0902
	CL_PLATFORM_VENDOR     uint32 = 0x0903
	CL_PLATFORM_EXTENSIONS uint32 = 0x0904
)

// Device info.
const (
	CL_DEVICE_TYPE                      uint32 = 0x1000
	CL_DEVICE_MAX_COMPUTE_UNITS         uint32 = 0x1002
	CL_DEVICE_MAX_WORK_GROUP_SIZE       uint32 = 0x1004
	CL_DEVICE_MAX_MEM_ALLOC_SIZE        uint32 = 0x1010
	CL_DEVICE_GLOBAL_MEM_SIZE           uint32 = 0x101F
	CL_DEVICE_LOCAL_MEM_SIZE            uint32 = 0x1023
	CL_DEVICE_NAME                      uint32 = 0x102B
	CL_DEVICE_VENDOR                    uint32 = 0x102C
	CL_DRIVER_VERSION                   uint32 = 0x102D
	CL_DEVICE_VERSION                   uint32 = 0x102F
	CL_DEVICE_EXTENSIONS                uint32 = 0x1030
	CL_DEVICE_PLATFORM                  uint32 = 0x1031
	CL_DEVICE_BUILT_IN_KERNELS          uint32 = 0x103F
	CL_DEVICE_PARENT_DEVICE             uint32 = 0x1042
	CL_DEVICE_PARTITION_MAX_SUB_DEVICES uint32 = 0x1043
	CL_DEVICE_REFERENCE_COUNT           uint32 = 0x1047
)

// Device partition properties (cl_device_partition_property).
const (
	CL_DEVICE_PARTITION_EQUALLY            int64 = 0x1086
	CL_DEVICE_PARTITION_BY_COUNTS          int64 = 0x1087
	CL_DEVICE_PARTITION_BY_COUNTS_LIST_END int64 = 0x0
	CL_DEVICE_PARTITION_BY_AFFINITY_DOMAIN int64 = 0x1088
)

// Context info and properties.
const (
	CL_CONTEXT_REFERENCE_COUNT uint32 = 0x1080
	CL_CONTEXT_DEVICES         uint32 = 0x1081
	CL_CONTEXT_PROPERTIES      uint32 = 0x1082
	CL_CONTEXT_NUM_DEVICES     uint32 = 0x1083

	CL_CONTEXT_PLATFORM int64 = 0x1084
)

// Command queue info. CL_QUEUE_PROPERTIES is also the key used with clCreateCommandQueueWithProperties.
const (
	CL_QUEUE_CONTEXT         uint32 = 0x1090
	CL_QUEUE_DEVICE          uint32 = 0x1091
	CL_QUEUE_REFERENCE_COUNT uint32 = 0x1092
	CL_QUEUE_PROPERTIES      uint32 = 0x1093
	CL_QUEUE_SIZE            uint32 = 0x1094
	CL_QUEUE_DEVICE_DEFAULT  uint32 = 0x1095
)

// Memory object info and types.
const (
	CL_MEM_TYPE                 uint32 = 0x1100
	CL_MEM_FLAGS                uint32 = 0x1101
	CL_MEM_SIZE                 uint32 = 0x1102
	CL_MEM_HOST_PTR             uint32 = 0x1103
	CL_MEM_MAP_COUNT            uint32 = 0x1104
	CL_MEM_REFERENCE_COUNT      uint32 = 0x1105
	CL_MEM_CONTEXT              uint32 = 0x1106
	CL_MEM_ASSOCIATED_MEMOBJECT uint32 = 0x1107
	CL_MEM_OFFSET               uint32 = 0x1108

	CL_MEM_OBJECT_BUFFER         uint32 = 0x10F0
	CL_MEM_OBJECT_IMAGE2D        uint32 = 0x10F1
	CL_MEM_OBJECT_IMAGE3D        uint32 = 0x10F2
	CL_MEM_OBJECT_IMAGE2D_ARRAY  uint32 = 0x10F3
	CL_MEM_OBJECT_IMAGE1D        uint32 = 0x10F4
	CL_MEM_OBJECT_IMAGE1D_ARRAY  uint32 = 0x10F5
	CL_MEM_OBJECT_IMAGE1D_BUFFER uint32 = 0x10F6
	CL_MEM_OBJECT_PIPE           uint32 = 0x10F7

	CL_BUFFER_CREATE_TYPE_REGION uint32 = 0x1220
)

// Image info.
const (
	CL_IMAGE_FORMAT       uint32 = 0x1110
	CL_IMAGE_ELEMENT_SIZE uint32 = 0x1111
	CL_IMAGE_ROW_PITCH    uint32 = 0x1112
	CL_IMAGE_SLICE_PITCH  uint32 = 0x1113
	CL_IMAGE_WIDTH        uint32 = 0x1114
	CL_IMAGE_HEIGHT       uint32 = 0x1115
	CL_IMAGE_DEPTH        uint32 = 0x1116
	CL_IMAGE_ARRAY_SIZE   uint32 = 0x1117
)

// Image channel orders and types (subset).
const (
	CL_R    uint32 = 0x10B0
	CL_RG   uint32 = 0x10B2
	CL_RGBA uint32 = 0x10B5

	CL_UNORM_INT8     uint32 = 0x10D2
	CL_SIGNED_INT32   uint32 = 0x10D9
	CL_UNSIGNED_INT8  uint32 = 0x10DA
	CL_UNSIGNED_INT32 uint32 = 0x10DC
	CL_HALF_FLOAT     uint32 = 0x10DD
	CL_FLOAT          uint32 = 0x10DE
)

// Sampler info and parameters.
const (
	CL_ADDRESS_NONE            uint32 = 0x1130
	CL_ADDRESS_CLAMP_TO_EDGE   uint32 = 0x1131
	CL_ADDRESS_CLAMP           uint32 = 0x1132
	CL_ADDRESS_REPEAT          uint32 = 0x1133
	CL_ADDRESS_MIRRORED_REPEAT uint32 = 0x1134

	CL_FILTER_NEAREST uint32 = 0x1140
	CL_FILTER_LINEAR  uint32 = 0x1141

	CL_SAMPLER_REFERENCE_COUNT   uint32 = 0x1150
	CL_SAMPLER_CONTEXT           uint32 = 0x1151
	CL_SAMPLER_NORMALIZED_COORDS uint32 = 0x1152
	CL_SAMPLER_ADDRESSING_MODE   uint32 = 0x1153
	CL_SAMPLER_FILTER_MODE       uint32 = 0x1154
)

// Program info and build info.
const (
	CL_PROGRAM_REFERENCE_COUNT uint32 = 0x1160
	CL_PROGRAM_CONTEXT         uint32 = 0x1161
	CL_PROGRAM_NUM_DEVICES     uint32 = 0x1162
	CL_PROGRAM_DEVICES         uint32 = 0x1163
	CL_PROGRAM_SOURCE          uint32 = 0x1164
	CL_PROGRAM_BINARY_SIZES    uint32 = 0x1165
	CL_PROGRAM_BINARIES        uint32 = 0x1166
	CL_PROGRAM_NUM_KERNELS     uint32 = 0x1167
	CL_PROGRAM_KERNEL_NAMES    uint32 = 0x1168

	CL_PROGRAM_BUILD_STATUS  uint32 = 0x1181
	CL_PROGRAM_BUILD_OPTIONS uint32 = 0x1182
	CL_PROGRAM_BUILD_LOG     uint32 = 0x1183
	CL_PROGRAM_BINARY_TYPE   uint32 = 0x1184

	CL_PROGRAM_BINARY_TYPE_NONE            uint32 = 0x0
	CL_PROGRAM_BINARY_TYPE_COMPILED_OBJECT uint32 = 0x1
	CL_PROGRAM_BINARY_TYPE_LIBRARY         uint32 = 0x2
	CL_PROGRAM_BINARY_TYPE_EXECUTABLE      uint32 = 0x4
)

// Kernel info.
const (
	CL_KERNEL_FUNCTION_NAME   uint32 = 0x1190
	CL_KERNEL_NUM_ARGS        uint32 = 0x1191
	CL_KERNEL_REFERENCE_COUNT uint32 = 0x1192
	CL_KERNEL_CONTEXT         uint32 = 0x1193
	CL_KERNEL_PROGRAM         uint32 = 0x1194
)

// Event info.
const (
	CL_EVENT_COMMAND_QUEUE            uint32 = 0x11D0
	CL_EVENT_COMMAND_TYPE             uint32 = 0x11D1
	CL_EVENT_REFERENCE_COUNT          uint32 = 0x11D2
	CL_EVENT_COMMAND_EXECUTION_STATUS uint32 = 0x11D3
	CL_EVENT_CONTEXT                  uint32 = 0x11D4
)

// Command execution status. Negative values are error codes.
const (
	CL_COMPLETE  int32 = 0x0
	CL_RUNNING   int32 = 0x1
	CL_SUBMITTED int32 = 0x2
	CL_QUEUED    int32 = 0x3
)

// Command types (cl_command_type), as reported by CL_EVENT_COMMAND_TYPE.
const (
	CL_COMMAND_NDRANGE_KERNEL       uint32 = 0x11F0
	CL_COMMAND_TASK                 uint32 = 0x11F1
	CL_COMMAND_READ_BUFFER          uint32 = 0x11F3
	CL_COMMAND_WRITE_BUFFER         uint32 = 0x11F4
	CL_COMMAND_COPY_BUFFER          uint32 = 0x11F5
	CL_COMMAND_READ_IMAGE           uint32 = 0x11F6
	CL_COMMAND_WRITE_IMAGE          uint32 = 0x11F7
	CL_COMMAND_COPY_IMAGE           uint32 = 0x11F8
	CL_COMMAND_COPY_IMAGE_TO_BUFFER uint32 = 0x11F9
	CL_COMMAND_COPY_BUFFER_TO_IMAGE uint32 = 0x11FA
	CL_COMMAND_MAP_BUFFER           uint32 = 0x11FB
	CL_COMMAND_MAP_IMAGE            uint32 = 0x11FC
	CL_COMMAND_UNMAP_MEM_OBJECT     uint32 = 0x11FD
	CL_COMMAND_MARKER               uint32 = 0x11FE
	CL_COMMAND_ACQUIRE_GL_OBJECTS   uint32 = 0x11FF
	CL_COMMAND_RELEASE_GL_OBJECTS   uint32 = 0x1200
	CL_COMMAND_READ_BUFFER_RECT     uint32 = 0x1201
	CL_COMMAND_WRITE_BUFFER_RECT    uint32 = 0x1202
	CL_COMMAND_COPY_BUFFER_RECT     uint32 = 0x1203
	CL_COMMAND_USER                 uint32 = 0x1204
	CL_COMMAND_BARRIER              uint32 = 0x1205
	CL_COMMAND_MIGRATE_MEM_OBJECTS  uint32 = 0x1206
	CL_COMMAND_FILL_BUFFER          uint32 = 0x1207
	CL_COMMAND_FILL_IMAGE           uint32 = 0x1208
	CL_COMMAND_SVM_FREE             uint32 = 0x1209
	CL_COMMAND_SVM_MEMCPY           uint32 = 0x120A
	CL_COMMAND_SVM_MEMFILL          uint32 = 0x120B
	CL_COMMAND_SVM_MAP              uint32 = 0x120C
	CL_COMMAND_SVM_UNMAP            uint32 = 0x120D
	CL_COMMAND_SVM_MIGRATE_MEM      uint32 = 0x120E
)

// Profiling info.
const (
	CL_PROFILING_COMMAND_QUEUED   uint32 = 0x1280
	CL_PROFILING_COMMAND_SUBMIT   uint32 = 0x1281
	CL_PROFILING_COMMAND_START    uint32 = 0x1282
	CL_PROFILING_COMMAND_END      uint32 = 0x1283
	CL_PROFILING_COMMAND_COMPLETE uint32 = 0x1284
)

// OpenGL interop (cl_gl.h).
const (
	CL_GL_OBJECT_BUFFER       uint32 = 0x2000
	CL_GL_OBJECT_TEXTURE2D    uint32 = 0x2001
	CL_GL_OBJECT_TEXTURE3D    uint32 = 0x2002
	CL_GL_OBJECT_RENDERBUFFER uint32 = 0x2003
)
