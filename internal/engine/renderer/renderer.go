// Package renderer provides OpenGL rendering functionality.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/globevr/internal/engine/camera"
	"github.com/Faultbox/globevr/internal/engine/framebuffer"
	"github.com/Faultbox/globevr/internal/engine/shader"
	"github.com/Faultbox/globevr/internal/engine/surface"
	"github.com/Faultbox/globevr/internal/logger"
)

const vertexShaderSource = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aColor;

uniform mat4 uMVP;

out vec3 vertexColor;

void main() {
	gl_Position = uMVP * vec4(aPos, 1.0);
	vertexColor = aColor;
}
`

const fragmentShaderSource = `
#version 410 core

in vec3 vertexColor;
out vec4 FragColor;

void main() {
	FragColor = vec4(vertexColor, 1.0);
}
`

// Config holds renderer configuration.
type Config struct {
	// Width and Height size one eye's render target.
	Width  int
	Height int

	GlobeRadius float64
}

// mesh is an uploaded vertex array.
type mesh struct {
	vao   uint32
	vbo   uint32
	count int32
	mode  uint32
}

// Renderer draws the globe from its live camera into an offscreen eye target.
type Renderer struct {
	config Config
	cam    *camera.Camera
	target *framebuffer.Framebuffer

	program *shader.Program
	surface mesh
	lines   mesh

	log *zap.Logger
}

// New creates a new renderer drawing from cam.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cam *camera.Camera, cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		cam:    cam,
		log:    logger.Named("renderer"),
	}

	// Initialize OpenGL
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	// Setup default OpenGL state
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)

	var err error
	r.program, err = shader.New(vertexShaderSource, fragmentShaderSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.target, err = framebuffer.New(cfg.Width, cfg.Height)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create eye target: %w", err)
	}

	// The solid sphere sits just below the graticule so it hides the far side.
	r.surface = upload(solidVertices(cfg.GlobeRadius*0.999), gl.TRIANGLES)
	r.lines = upload(lineVertices(cfg.GlobeRadius), gl.LINES)

	r.log.Debug("globe uploaded",
		zap.Int32("triangles", r.surface.count/3),
		zap.Int32("lines", r.lines.count/2),
	)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for _, m := range []*mesh{&r.surface, &r.lines} {
		if m.vao != 0 {
			gl.DeleteVertexArrays(1, &m.vao)
		}
		if m.vbo != 0 {
			gl.DeleteBuffers(1, &m.vbo)
		}
	}
	if r.target != nil {
		r.target.Destroy()
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Camera returns the live camera.
func (r *Renderer) Camera() *camera.Camera {
	return r.cam
}

// Surface returns the eye target.
func (r *Renderer) Surface() surface.Surface {
	return r.target
}

// Resize resizes the eye target.
func (r *Renderer) Resize(width, height int) error {
	if err := r.target.Resize(width, height); err != nil {
		return err
	}
	r.config.Width = width
	r.config.Height = height
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return nil
}

// Render draws one view of the globe with the camera's current pose and frustum.
func (r *Renderer) Render() error {
	restore := r.target.BindWithViewport()
	defer restore()

	r.target.Clear(0, 0, 0, 1)

	r.program.Use()
	r.program.SetMat4("uMVP", toMat32(r.cam.ViewProjection()))

	for _, m := range []mesh{r.surface, r.lines} {
		gl.BindVertexArray(m.vao)
		gl.DrawArrays(m.mode, 0, m.count)
	}
	gl.BindVertexArray(0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("render: OpenGL error 0x%x", code)
	}
	return nil
}

// upload creates a VAO for interleaved position + color vertices.
func upload(vertices []float32, mode uint32) mesh {
	m := mesh{count: int32(len(vertices) / 6), mode: mode}
	if len(vertices) == 0 {
		return m
	}

	// Create VAO (Vertex Array Object)
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	// Create VBO (Vertex Buffer Object)
	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	// Position attribute (location = 0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 6*4, nil)
	gl.EnableVertexAttribArray(0)

	// Color attribute (location = 1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, 6*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	// Unbind
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return m
}
