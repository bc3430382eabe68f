package cl

import (
	"testing"

	"github.com/gomlx/gocl/clapi"
	"github.com/gomlx/gocl/clfake"
	"github.com/stretchr/testify/require"
)

func TestExtensionTable(t *testing.T) {
	env := newTestEnv(t, clfake.New().WithPlatforms(2))
	fake := env.fake
	table := env.platform.Extensions()
	require.Same(t, table, env.ctx.Extensions())
	require.Same(t, table, env.queue.Extensions())
	require.Same(t, table, env.devices[0].Extensions())

	// Resolved once, when the queue was created.
	numEntryPoints := len(clapi.OptionalEntryPoints)
	require.Equal(t, numEntryPoints, fake.Calls("clGetExtensionFunctionAddressForPlatform"))
	require.Len(t, table.Names(), numEntryPoints)
	require.True(t, table.Available("clSVMAlloc"))
	require.True(t, table.Available("clCreateFromGLBuffer"))
	require.Equal(t, 1, fake.Calls("clCreateCommandQueueWithProperties"))
	require.Zero(t, fake.Calls("clCreateCommandQueue"))

	_, err := table.Proc("clNotAnEntryPoint")
	requireErrorIs(t, err, ErrInternal)
	require.False(t, table.Available("clNotAnEntryPoint"))
	require.Equal(t, numEntryPoints, fake.Calls("clGetExtensionFunctionAddressForPlatform"))

	// Each platform has its own table.
	platforms := capture(env.lib.GetPlatforms()).Test(t)
	require.NotSame(t, table, platforms[1].Extensions())
	require.Equal(t, []string{"cl_khr_icd", "cl_khr_gl_sharing"}, capture(env.platform.ExtensionNames()).Test(t))
}

func TestVersion12(t *testing.T) {
	env := newTestEnv(t, clfake.New().WithVersion("1.2"))
	fake, ctx := env.fake, env.ctx
	table := ctx.Extensions()

	// Queues are created with the deprecated entry point.
	require.Equal(t, 1, fake.Calls("clCreateCommandQueue"))
	require.Zero(t, fake.Calls("clCreateCommandQueueWithProperties"))
	profiling := capture(ctx.NewQueue(env.devices[1]).Profiling().Done()).Test(t)
	require.Equal(t, 2, fake.Calls("clCreateCommandQueue"))
	require.Same(t, env.devices[1], profiling.Device())

	// Only the extension entry points are available.
	require.Equal(t, []string{"clCreateFromGLBuffer", "clCreateFromGLRenderbuffer", "clCreateFromGLTexture",
		"clEnqueueAcquireGLObjects", "clEnqueueReleaseGLObjects"}, table.Names())

	_, err := ctx.AllocSVM(clapi.MemReadWrite, 64, 0)
	requireErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "requires OpenCL version >= 2.0")
	_, err = ctx.CreatePipe(clapi.MemReadWrite, 4, 16)
	requireErrorIs(t, err, ErrUnavailable)
	_, err = ctx.CreateProgramWithIL([]byte(testSource))
	requireErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "2.1")
	requireErrorIs(t, env.queue.SetAsDefault(), ErrUnavailable)

	program := capture(ctx.CreateProgramWithSource(testSource)).Test(t)
	require.NoError(t, program.Build(""))
	k := capture(program.CreateKernel("scale")).Test(t)
	_, err = k.Clone()
	requireErrorIs(t, err, ErrUnavailable)
	require.Zero(t, fake.Calls("clCloneKernel"))
}

func TestWithoutEntryPoints(t *testing.T) {
	env := newTestEnv(t, clfake.New().WithoutEntryPoints("clSVMAlloc", "clCreateCommandQueueWithProperties"))
	require.Equal(t, 1, env.fake.Calls("clCreateCommandQueue"))
	_, err := env.ctx.AllocSVM(clapi.MemReadWrite, 64, 0)
	requireErrorIs(t, err, ErrUnavailable)
	require.False(t, env.ctx.Extensions().Available("clSVMAlloc"))
	require.True(t, env.ctx.Extensions().Available("clSVMFree"))

	// Other entry points are still there.
	pipe := capture(env.ctx.CreatePipe(clapi.MemReadWrite, 4, 16)).Test(t)
	require.Equal(t, uint32(4), pipe.PacketSize())
	require.Equal(t, uint32(16), pipe.MaxPackets())
}

func TestGLWithoutExtension(t *testing.T) {
	env := newTestEnv(t, clfake.New().WithExtensions())
	require.Empty(t, capture(env.platform.ExtensionNames()).Test(t))
	_, err := env.ctx.CreateFromGLBuffer(clapi.MemReadWrite, 1)
	requireErrorIs(t, err, ErrUnavailable)
	require.Contains(t, err.Error(), "cl_khr_gl_sharing")
	_, err = env.ctx.CreateFromGLTexture(clapi.MemReadOnly, 0x0DE1, 0, 1)
	requireErrorIs(t, err, ErrUnavailable)
	_, err = env.ctx.CreateFromGLRenderbuffer(clapi.MemReadOnly, 1)
	requireErrorIs(t, err, ErrUnavailable)
	require.Zero(t, env.fake.Live(clapi.ClassMem))
}

func TestGLSharing(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx, queue := env.ctx, env.queue

	glBuffer := capture(ctx.CreateFromGLBuffer(clapi.MemReadWrite, 7)).Test(t)
	require.Equal(t, 1024, glBuffer.Size())
	require.True(t, glBuffer.Marks().Has(MarkGLBuffer))
	texture := capture(ctx.CreateFromGLTexture(clapi.MemReadOnly, 0x0DE1, 0, 8)).Test(t)
	require.True(t, texture.Marks().Has(MarkGLTexture))
	require.Equal(t, clapi.ImageFormat{ChannelOrder: clapi.CL_RGBA, ChannelType: clapi.CL_UNORM_INT8}, texture.Format())
	require.Equal(t, clapi.CL_MEM_OBJECT_IMAGE2D, texture.Desc().Type)
	require.Equal(t, 16, texture.Desc().Width)
	require.Equal(t, 16, texture.Desc().Height)
	renderbuffer := capture(ctx.CreateFromGLRenderbuffer(clapi.MemWriteOnly, 9)).Test(t)
	require.True(t, renderbuffer.Marks().Has(MarkGLRenderbuffer))
	require.Same(t, ctx, renderbuffer.Context())

	// Invalid OpenGL objects are reported by the runtime.
	_, err := ctx.CreateFromGLBuffer(clapi.MemReadWrite, 0)
	st, _ := StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_GL_OBJECT, st)
	_, err = ctx.CreateFromGLTexture(clapi.MemReadOnly, 0x0DE1, -1, 8)
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_MIP_LEVEL, st)

	shared := []Wrapper{glBuffer, texture, renderbuffer}
	acquired := capture(queue.AcquireGLObjects(shared, nil, true)).Test(t)
	require.Equal(t, uint32(clapi.CL_COMMAND_ACQUIRE_GL_OBJECTS), capture(acquired.CommandType()).Test(t))
	capture(queue.WriteBuffer(glBuffer, true, 0, []byte{1, 2, 3}, []*Event{acquired}, false)).Test(t)
	_, err = queue.AcquireGLObjects(shared[:1], nil, false)
	st, _ = StatusOf(err)
	require.Equal(t, clapi.CL_INVALID_GL_OBJECT, st, "objects can't be acquired twice")
	capture(queue.ReleaseGLObjects(shared, nil, false)).Test(t)
	require.NoError(t, queue.Finish())
	require.Equal(t, []byte{1, 2, 3}, env.fake.Memory(glBuffer.Raw())[:3])

	// Only objects created from OpenGL objects can be acquired.
	buf := capture(ctx.NewBuffer().Size(16).Done()).Test(t)
	calls := env.fake.TotalCalls()
	_, err = queue.AcquireGLObjects([]Wrapper{glBuffer, buf}, nil, false)
	requireErrorIs(t, err, ErrValue)
	_, err = queue.ReleaseGLObjects(nil, nil, false)
	requireErrorIs(t, err, ErrEmpty)
	require.Equal(t, calls, env.fake.TotalCalls())

	// They are destroyed with the context, like any other memory object.
	require.NoError(t, ctx.Destroy())
	require.True(t, texture.IsDestroyed())
	require.Zero(t, env.fake.Live(clapi.ClassMem))
}
