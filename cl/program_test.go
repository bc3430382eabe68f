package cl

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gomlx/gocl/clapi"
	"github.com/gomlx/gocl/clfake"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

// scaleKernel emulates the "scale" kernel of testSource.
func scaleKernel(global []int, args []clfake.KernelArg) {
	x := args[0].Mem
	factor := math.Float32frombits(binary.NativeEndian.Uint32(args[1].Value))
	for ii := range global[0] {
		v := math.Float32frombits(binary.NativeEndian.Uint32(x[4*ii:]))
		binary.NativeEndian.PutUint32(x[4*ii:], math.Float32bits(v*factor))
	}
}

func TestProgramAndKernels(t *testing.T) {
	env := newTestEnv(t, nil)
	env.fake.RegisterKernel("scale", scaleKernel)
	ctx, queue := env.ctx, env.queue

	program := capture(ctx.CreateProgramWithSource(testSource)).Test(t)
	require.Same(t, ctx, program.Context())
	_, err := program.CreateKernel("scale")
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_PROGRAM_EXECUTABLE, st, "kernels can't be created before the program is built")

	require.NoError(t, program.Build("-cl-std=CL2.0", env.devices...))
	require.Equal(t, []string{"scale", "fill"}, capture(program.KernelNames()).Test(t))
	require.Empty(t, capture(program.BuildLog(env.devices[0])).Test(t))

	k := capture(program.CreateKernel("scale")).Test(t)
	require.Equal(t, "scale", capture(k.FunctionName()).Test(t))
	require.Equal(t, 2, capture(k.NumArgs()).Test(t))
	require.Same(t, program, k.Program())

	x := capture(BufferFromSlice(ctx, []float32{1, 2, 3, 4})).Test(t)
	require.NoError(t, k.SetArg(0, x))
	require.NoError(t, k.SetArg(1, float32(2.5)))
	event := capture(queue.NDRangeKernel(k, nil, []int{4}, nil, nil, true)).Test(t)
	require.Equal(t, uint32(clapi.CL_COMMAND_NDRANGE_KERNEL), capture(event.CommandType()).Test(t))
	got := make([]float32, 4)
	capture(ReadSlice(queue, x, true, 0, got, []*Event{event}, false)).Test(t)
	require.Equal(t, []float32{2.5, 5, 7.5, 10}, got)

	// A clone keeps the arguments, and belongs to the same program.
	clone := capture(k.Clone()).Test(t)
	require.Same(t, program, clone.Program())
	require.NotEqual(t, k.Raw(), clone.Raw())
	capture(queue.NDRangeKernel(clone, []int{0}, []int{2}, []int{2}, nil, false)).Test(t)
	capture(ReadSlice(queue, x, true, 0, got, nil, false)).Test(t)
	require.Equal(t, []float32{6.25, 12.5, 7.5, 10}, got)

	// Unknown kernels.
	_, err = program.CreateKernel("unknown")
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_KERNEL_NAME, st)
	_, err = program.CreateKernel("")
	requireErrorIs(t, err, ErrValue)

	// Programs with kernels can't be rebuilt.
	err = program.Build("")
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_OPERATION, st)

	kernels := capture(program.CreateKernels()).Test(t)
	require.Len(t, kernels, 2)
	require.Equal(t, "fill", capture(kernels[1].FunctionName()).Test(t))
	require.Equal(t, 3, capture(kernels[1].NumArgs()).Test(t))
	require.Equal(t, 4, env.fake.Live(clapi.ClassKernel))
}

func TestKernelArgs(t *testing.T) {
	env := newTestEnv(t, nil)
	queue := env.queue
	var gotArgs []clfake.KernelArg
	var gotGlobal []int
	env.fake.RegisterKernel("fill", func(global []int, args []clfake.KernelArg) {
		gotGlobal = global
		gotArgs = args
	})
	program := capture(env.ctx.CreateProgramWithSource(testSource)).Test(t)
	require.NoError(t, program.Build(""))
	k := capture(program.CreateKernel("fill")).Test(t)
	buf := capture(env.ctx.NewBuffer().Size(64).Done()).Test(t)

	// Missing arguments are reported by the runtime.
	_, err := queue.Task(k, nil, false)
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_KERNEL_ARGS, st)

	require.NoError(t, k.SetArg(0, buf))
	require.NoError(t, k.SetArg(1, 42))
	require.NoError(t, k.SetArg(2, LocalMemory(256)))
	capture(queue.NDRangeKernel(k, nil, []int{16, 4}, []int{4, 2}, nil, false)).Test(t)
	require.NoError(t, queue.Finish())
	require.Equal(t, []int{16, 4}, gotGlobal)
	require.Len(t, gotArgs, 3)
	require.Len(t, gotArgs[0].Mem, 64)
	require.Equal(t, int32(42), int32(binary.NativeEndian.Uint32(gotArgs[1].Value)))
	require.Equal(t, 256, gotArgs[2].Local)

	// Scalars of all sizes.
	for _, tc := range []struct {
		value any
		size  int
	}{
		{int8(-1), 1}, {uint16(7), 2}, {uint32(7), 4}, {int64(-7), 8}, {float64(0.5), 8},
		{float16.Fromfloat32(1.5), 2}, {[]byte{1, 2, 3}, 3},
	} {
		require.NoError(t, k.SetArg(1, tc.value), "value %#v", tc.value)
		capture(queue.Task(k, nil, false)).Test(t)
		require.Len(t, gotArgs[1].Value, tc.size, "value %#v", tc.value)
	}
	require.NoError(t, SetArgValue(k, 1, float16.Fromfloat32(2)))
	capture(queue.Task(k, nil, false)).Test(t)
	require.Equal(t, float16.Fromfloat32(2).Bits(), binary.NativeEndian.Uint16(gotArgs[1].Value))

	// Invalid arguments.
	calls := env.fake.TotalCalls()
	requireErrorIs(t, k.SetArg(1, nil), ErrValue)
	requireErrorIs(t, k.SetArg(1, "string"), ErrValue)
	requireErrorIs(t, k.SetArg(1, math.MaxInt32+1), ErrValue)
	requireErrorIs(t, k.SetArg(2, LocalMemory(0)), ErrValue)
	requireErrorIs(t, k.SetArg(1, []byte{}), ErrEmpty)
	requireErrorIs(t, k.SetArg(-1, int32(1)), ErrValue)
	var nilBuffer *Buffer
	requireErrorIs(t, k.SetArg(0, nilBuffer), ErrValue)
	_, err = queue.NDRangeKernel(k, nil, nil, nil, nil, false)
	requireErrorIs(t, err, ErrLength)
	_, err = queue.NDRangeKernel(k, nil, []int{1, 1, 1, 1}, nil, nil, false)
	requireErrorIs(t, err, ErrLength)
	_, err = queue.NDRangeKernel(k, []int{0}, []int{4, 4}, nil, nil, false)
	requireErrorIs(t, err, ErrLength)
	_, err = queue.NDRangeKernel(k, nil, []int{4, 4}, []int{4}, nil, false)
	requireErrorIs(t, err, ErrLength)
	_, err = queue.NDRangeKernel(k, nil, []int{4, 0}, nil, nil, false)
	requireErrorIs(t, err, ErrValue)
	_, err = queue.NDRangeKernel(nil, nil, []int{4}, nil, nil, false)
	requireErrorIs(t, err, ErrValue)
	require.Equal(t, calls, env.fake.TotalCalls())

	// Native validation.
	err = k.SetArg(3, int32(1))
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_ARG_INDEX, st)
	_, err = queue.NDRangeKernel(k, nil, []int{6}, []int{4}, nil, false)
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_WORK_GROUP_SIZE, st)

	// Arguments must be alive.
	require.NoError(t, buf.Destroy())
	requireErrorIs(t, k.SetArg(0, buf), ErrDestroyed)
}

func TestBuildFailure(t *testing.T) {
	env := newTestEnv(t, nil)
	program := capture(env.ctx.CreateProgramWithSource("#error missing semicolon\n__kernel void k() {}")).Test(t)
	err := program.Build("")
	require.Error(t, err)
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_BUILD_PROGRAM_FAILURE, st)
	require.Contains(t, err.Error(), "error: missing semicolon")
	require.Equal(t, "error: missing semicolon", capture(program.BuildLog(env.devices[1])).Test(t))
	_, err = program.KernelNames()
	require.True(t, IsNative(err))

	_, err = env.ctx.CreateProgramWithSource("")
	requireErrorIs(t, err, ErrEmpty)
}

const (
	factorHeader = "#define FACTOR 2.0f\n"
	twiceSource  = `#include "factor.h"
__kernel void twice(__global float *x) {
	x[get_global_id(0)] *= FACTOR;
}
`
	negateSource = `
__kernel void negate(__global float *x) {
	x[get_global_id(0)] = -x[get_global_id(0)];
}
`
)

func TestCompileAndLink(t *testing.T) {
	env := newTestEnv(t, nil)
	fake, ctx, device := env.fake, env.ctx, env.devices[0]
	header := capture(ctx.CreateProgramWithSource(factorHeader)).Test(t)
	twice := capture(ctx.CreateProgramWithSource(twiceSource)).Test(t)
	negate := capture(ctx.CreateProgramWithSource(negateSource)).Test(t)
	require.Equal(t, uint32(clapi.CL_PROGRAM_BINARY_TYPE_NONE), capture(twice.BinaryType(device)).Test(t))

	// Without the header the include can't be resolved.
	err := twice.Compile("", nil)
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_COMPILE_PROGRAM_FAILURE, st)
	require.Contains(t, err.Error(), "'factor.h' file not found")
	requireErrorIs(t, twice.Compile("", []Header{{Name: "", Program: header}}), ErrValue)
	requireErrorIs(t, twice.Compile("", []Header{{Name: "factor.h"}}), ErrValue)

	require.NoError(t, twice.Compile("", []Header{{Name: "factor.h", Program: header}}))
	require.Equal(t, uint32(clapi.CL_PROGRAM_BINARY_TYPE_COMPILED_OBJECT), capture(twice.BinaryType(device)).Test(t))
	_, err = twice.CreateKernel("twice")
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_PROGRAM_EXECUTABLE, st, "compiled objects have no kernels until linked")

	require.NoError(t, negate.Compile("-cl-std=CL1.2", nil, env.devices...))
	library := capture(ctx.LinkProgram("-create-library", []*Program{negate})).Test(t)
	require.Equal(t, uint32(clapi.CL_PROGRAM_BINARY_TYPE_LIBRARY), capture(library.BinaryType(device)).Test(t))

	// The linked program is a new program of the context.
	linked := capture(ctx.LinkProgram("", []*Program{twice, library})).Test(t)
	require.NotEqual(t, twice.Raw(), linked.Raw())
	require.Same(t, ctx, linked.Context())
	require.Equal(t, uint32(clapi.CL_PROGRAM_BINARY_TYPE_EXECUTABLE), capture(linked.BinaryType(device)).Test(t))
	require.Equal(t, []string{"twice", "negate"}, capture(linked.KernelNames()).Test(t))
	require.Equal(t, 2, fake.Calls("clLinkProgram"))
	k := capture(linked.CreateKernel("negate")).Test(t)
	require.Same(t, linked, k.Program())

	// Linking programs defining the same kernel fails.
	_, err = ctx.LinkProgram("", []*Program{twice, twice})
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_LINK_PROGRAM_FAILURE, st)
	_, err = ctx.LinkProgram("", nil)
	requireErrorIs(t, err, ErrEmpty)
	other := capture(env.platform.CreateContext(env.devices[1])).Test(t)
	_, err = other.LinkProgram("", []*Program{twice})
	requireErrorIs(t, err, ErrValue)
	require.NoError(t, other.Destroy())

	// The linked program is independent of its inputs, but it's destroyed with the context.
	require.NoError(t, twice.Destroy())
	require.NoError(t, library.Destroy())
	require.False(t, linked.IsDestroyed())
	require.Equal(t, 3, fake.Live(clapi.ClassProgram))
	require.NoError(t, ctx.Destroy())
	require.True(t, linked.IsDestroyed())
	require.True(t, k.IsDestroyed())
	require.Zero(t, fake.Live(clapi.ClassProgram))
}

func TestBuiltInKernels(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, queue := env.ctx, env.queue
	require.Equal(t, []string{"copy_bytes", "fill_bytes"}, capture(env.devices[0].BuiltInKernels()).Test(t))

	program := capture(ctx.CreateProgramWithBuiltInKernels(env.devices[:1], "copy_bytes")).Test(t)
	require.Equal(t, []string{"copy_bytes"}, capture(program.KernelNames()).Test(t))
	require.Equal(t, uint32(clapi.CL_PROGRAM_BINARY_TYPE_EXECUTABLE),
		capture(program.BinaryType(env.devices[0])).Test(t))
	st, _ := StatusOf(program.Build(""))
	require.Equal(t, clapi.CL_INVALID_OPERATION, st, "built-in kernels can't be rebuilt")

	src := capture(ctx.NewBuffer().FromHost(iota8(32)).Done()).Test(t)
	dst := capture(ctx.NewBuffer().Size(32).Done()).Test(t)
	k := capture(program.CreateKernel("copy_bytes")).Test(t)
	require.Equal(t, 2, capture(k.NumArgs()).Test(t))
	require.NoError(t, k.SetArg(0, src))
	require.NoError(t, k.SetArg(1, dst))
	capture(queue.NDRangeKernel(k, nil, []int{16}, nil, nil, false)).Test(t)
	got := make([]byte, 32)
	capture(queue.ReadBuffer(dst, true, 0, got, nil, false)).Test(t)
	require.Equal(t, append(iota8(16), make([]byte, 16)...), got)

	_, err := ctx.CreateProgramWithBuiltInKernels(env.devices, "no_such_kernel")
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_VALUE, st)
	_, err = ctx.CreateProgramWithBuiltInKernels(env.devices)
	requireErrorIs(t, err, ErrEmpty)
	_, err = ctx.CreateProgramWithBuiltInKernels(nil, "copy_bytes")
	requireErrorIs(t, err, ErrEmpty)
}

func TestSpecializationConstants(t *testing.T) {
	env := newTestEnv(t, nil)
	il := capture(env.ctx.CreateProgramWithIL([]byte(testSource))).Test(t)
	require.NoError(t, SetSpecializationConstantValue(il, 3, int32(-7)))
	require.NoError(t, il.SetSpecializationConstant(4, []byte{1}))
	value := env.fake.SpecializationConstant(il.Raw(), 3)
	require.Len(t, value, 4)
	require.Equal(t, int32(-7), int32(binary.NativeEndian.Uint32(value)))
	require.Equal(t, []byte{1}, env.fake.SpecializationConstant(il.Raw(), 4))
	require.NoError(t, il.Build(""))
	requireErrorIs(t, il.SetSpecializationConstant(5, nil), ErrEmpty)

	// Only programs created from IL have specialization constants.
	source := capture(env.ctx.CreateProgramWithSource(testSource)).Test(t)
	st, _ := StatusOf(source.SetSpecializationConstant(1, []byte{1}))
	require.Equal(t, clapi.CL_INVALID_PROGRAM, st)

	// The entry point is only available from OpenCL 2.2.
	old := newTestEnv(t, clfake.New().WithVersion("2.1"))
	il = capture(old.ctx.CreateProgramWithIL([]byte(testSource))).Test(t)
	err := il.SetSpecializationConstant(1, []byte{1})
	requireErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "requires OpenCL version >= 2.2")
}

func TestProgramFromBinaryAndIL(t *testing.T) {
	env := newTestEnv(t, nil)
	bin := []byte(testSource)
	program := capture(env.ctx.CreateProgramWithBinary(env.devices, [][]byte{bin, bin})).Test(t)
	require.NoError(t, program.Build(""))
	require.Len(t, capture(program.CreateKernels()).Test(t), 2)

	_, err := env.ctx.CreateProgramWithBinary(env.devices, [][]byte{bin})
	requireErrorIs(t, err, ErrLength)
	_, err = env.ctx.CreateProgramWithBinary(nil, nil)
	requireErrorIs(t, err, ErrEmpty)
	_, err = env.ctx.CreateProgramWithBinary(env.devices[:1], [][]byte{{}})
	requireErrorIs(t, err, ErrEmpty)
	_, err = env.ctx.CreateProgramWithBinary(env.devices, [][]byte{bin, []byte("other")})
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_BINARY, st)

	il := capture(env.ctx.CreateProgramWithIL([]byte(testSource))).Test(t)
	require.NoError(t, il.Build(""))
	require.Equal(t, []string{"scale", "fill"}, capture(il.KernelNames()).Test(t))
	_, err = env.ctx.CreateProgramWithIL(nil)
	requireErrorIs(t, err, ErrEmpty)
}

func TestHostData(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, queue := env.ctx, env.queue
	require.Equal(t, 8, SizeOf[float64]())
	require.Equal(t, 2, SizeOf[float16.Float16]())

	_, err := BufferFromSlice[float32](ctx, nil)
	requireErrorIs(t, err, ErrEmpty)

	halfs := []float16.Float16{float16.Fromfloat32(1), float16.Fromfloat32(-2), float16.Fromfloat32(0.5),
		float16.Fromfloat32(8)}
	b := capture(BufferFromSlice(ctx, halfs)).Test(t)
	require.Equal(t, 8, b.Size())
	capture(FillValue(queue, b, float16.Fromfloat32(0.25), 1, 2, nil, false)).Test(t)
	got := make([]float16.Float16, 4)
	capture(ReadSlice(queue, b, true, 0, got, nil, false)).Test(t)
	require.Equal(t, []float32{1, 0.25, 0.25, 8}, []float32{got[0].Float32(), got[1].Float32(), got[2].Float32(),
		got[3].Float32()})

	ints := capture(ctx.NewBuffer().Size(4 * SizeOf[int32]()).Done()).Test(t)
	capture(FillValue(queue, ints, int32(-1), 0, 4, nil, false)).Test(t)
	capture(WriteSlice(queue, ints, true, 2, []int32{7, 11}, nil, false)).Test(t)
	gotInts := make([]int32, 4)
	capture(ReadSlice(queue, ints, true, 0, gotInts, nil, false)).Test(t)
	require.Equal(t, []int32{-1, -1, 7, 11}, gotInts)

	// Offsets are in elements.
	_, err = WriteSlice(queue, ints, true, 3, []int32{1, 2}, nil, false)
	requireErrorIs(t, err, ErrBoundaries)
	_, err = ReadSlice(queue, ints, true, 0, []int32{}, nil, false)
	requireErrorIs(t, err, ErrEmpty)
}
