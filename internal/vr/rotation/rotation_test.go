package rotation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/globevr/internal/engine/camera"
)

const tol = 1e-9

var yAxis = mgl64.Vec3{0, 1, 0}

func forwardPose() camera.Pose {
	return camera.NewPose(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, -1}, yAxis)
}

func assertPose(t *testing.T, want, got camera.Pose, delta float64) {
	t.Helper()
	assert.True(t, want.ApproxEqual(got, delta), "want %+v\n got %+v", want, got)
}

func randomQuat(r *rand.Rand) mgl64.Quat {
	axis := mgl64.Vec3{r.Float64() - 0.5, r.Float64() - 0.5, r.Float64() - 0.5}
	if axis.Len() < 1e-3 {
		axis = yAxis
	}
	return mgl64.QuatRotate(r.Float64()*2*math.Pi, axis.Normalize())
}

func TestFirstApplyKeepsPose(t *testing.T) {
	in := New()
	pose := camera.NewPose(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 1, -1}, yAxis)
	q := mgl64.QuatRotate(0.7, mgl64.Vec3{1, 0, 0})

	assertPose(t, pose, in.Apply(pose, q), tol)
}

func TestSteadyStateIsDriftFree(t *testing.T) {
	in := New()
	q := mgl64.QuatRotate(1.1, mgl64.Vec3{0.3, 1, 0.2}.Normalize())
	pose := in.Apply(forwardPose(), mgl64.QuatIdent())
	pose = in.Apply(pose, q)
	want := pose

	for i := 0; i < 10000; i++ {
		pose = in.Apply(pose, q)
	}
	assertPose(t, want, pose, 1e-10)
}

func TestHeadYawTurnsCamera(t *testing.T) {
	in := New()
	pose := in.Apply(forwardPose(), mgl64.QuatIdent())
	pose = in.Apply(pose, mgl64.QuatRotate(math.Pi/2, yAxis))

	assert.True(t, camera.ApproxVec(pose.Direction, mgl64.Vec3{-1, 0, 0}, tol), "direction %v", pose.Direction)
	assert.True(t, camera.ApproxVec(pose.Up, yAxis, tol), "up %v", pose.Up)
	assert.Equal(t, forwardPose().Position, pose.Position)

	// Turning the head back restores the original orientation.
	pose = in.Apply(pose, mgl64.QuatIdent())
	assertPose(t, forwardPose(), pose, tol)
}

func TestExternalTurnIsKept(t *testing.T) {
	in := New()
	q := mgl64.QuatRotate(0.5, yAxis)
	pose := in.Apply(forwardPose(), mgl64.QuatIdent())
	pose = in.Apply(pose, q)

	// Something else (mouse drag) turns the camera between frames.
	look := &camera.FreeLook{DragSensitivity: 0.01}
	look.HandleDrag(&pose, 40, -15)
	dragged := pose

	assertPose(t, dragged, in.Apply(pose, q), tol)
}

func TestMovementDoesNotAffectOrientation(t *testing.T) {
	in := New()
	q := mgl64.QuatRotate(0.3, mgl64.Vec3{1, 0, 0})
	pose := in.Apply(forwardPose(), q)
	pose = in.Apply(pose, q)
	before := pose

	pose.Move(0.016, 250, 150)
	after := in.Apply(pose, q)

	assert.Equal(t, pose.Position, after.Position)
	assert.True(t, camera.ApproxVec(after.Direction, before.Direction, tol))
	assert.True(t, camera.ApproxVec(after.Right, before.Right, tol))
}

func TestResetMatchesFreshIntegrator(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	used := New()
	pose := forwardPose()
	for i := 0; i < 50; i++ {
		pose = used.Apply(pose, randomQuat(r))
	}

	used.Reset()
	q := randomQuat(r)
	assertPose(t, New().Apply(pose, q), used.Apply(pose, q), 1e-12)
}

func TestApplyStaysOrthonormal(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	in := New()
	pose := forwardPose()
	look := camera.NewFreeLook()

	for i := 0; i < 20000; i++ {
		pose = in.Apply(pose, randomQuat(r))
		if i%7 == 0 {
			look.HandleDrag(&pose, r.Float64()*10, r.Float64()*10)
		}
	}
	assert.True(t, pose.Orthonormal(1e-9), "basis drifted: %+v", pose)
}

func TestLevel(t *testing.T) {
	const radius = 6378137.0
	in := New()
	pose := camera.NewPose(mgl64.Vec3{0, 0, radius}, mgl64.Vec3{1, 0, 0}, yAxis)
	pose = in.Apply(pose, mgl64.QuatRotate(0.4, yAxis))
	position := pose.Position

	require.NoError(t, in.Level(&pose))
	assert.True(t, camera.ApproxVec(pose.Up, mgl64.Vec3{0, 0, 1}, tol), "up %v", pose.Up)
	assert.Equal(t, position, pose.Position)
	assert.True(t, pose.Orthonormal(tol))
	assert.InDelta(t, 0, pose.Direction.Dot(pose.Up), tol, "direction should lie on the horizon")

	// The next update is a first update: any head orientation leaves the levelled pose alone.
	levelled := pose
	assertPose(t, levelled, in.Apply(pose, mgl64.QuatRotate(1.3, mgl64.Vec3{1, 0, 0})), tol)
}

func TestLevelLookingStraightDown(t *testing.T) {
	in := New()
	pose := camera.NewPose(mgl64.Vec3{0, 0, 100}, mgl64.Vec3{0, 0, -1}, yAxis)

	require.NoError(t, in.Level(&pose))
	assert.True(t, pose.Orthonormal(tol))
	assert.True(t, camera.ApproxVec(pose.Up, mgl64.Vec3{0, 0, 1}, tol))
	assert.True(t, camera.ApproxVec(pose.Right, mgl64.Vec3{1, 0, 0}, tol), "right %v", pose.Right)
}

func TestLevelAtOrigin(t *testing.T) {
	in := New()
	pose := camera.NewPose(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}, yAxis)
	before := pose

	assert.ErrorIs(t, in.Level(&pose), ErrDegeneratePosition)
	assert.Equal(t, before, pose)
}

func TestTeleportResets(t *testing.T) {
	in := New()
	pose := in.Apply(forwardPose(), mgl64.QuatIdent())
	pose = in.Apply(pose, mgl64.QuatRotate(0.9, yAxis))

	target := camera.NewPose(mgl64.Vec3{500, 0, 0}, mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{0, 0, 1})
	in.Teleport(&pose, target)
	assertPose(t, target, pose, tol)
	assertPose(t, target, in.Apply(pose, mgl64.QuatRotate(0.9, yAxis)), tol)
}
