package math

import "testing"

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I = %v, want %v", result, m)
	}
}

func TestTransformPointTranslateScale(t *testing.T) {
	m := Translate(Vec3{10, 20, 30}).Mul(Scale(Vec3{2, 2, 2}))
	got := m.TransformPoint(Vec3{1, 2, 3})
	want := Vec3{12, 24, 36}
	if got != want {
		t.Errorf("TransformPoint() = %v, want %v", got, want)
	}
}

func TestRotateAxis(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float32
		in    Vec3
		want  Vec3
	}{
		{"z 90", Vec3{0, 0, 1}, 90, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"y 90", Vec3{0, 1, 0}, 90, Vec3{1, 0, 0}, Vec3{0, 0, -1}},
		{"x 180", Vec3{1, 0, 0}, 180, Vec3{0, 1, 0}, Vec3{0, -1, 0}},
		{"unnormalized axis", Vec3{0, 0, 5}, 90, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		{"zero axis", Vec3{}, 90, Vec3{1, 2, 3}, Vec3{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotateAxis(tt.axis, tt.angle).TransformPoint(tt.in)
			if !vecNear(got, tt.want, 1e-5) {
				t.Errorf("RotateAxis(%v, %v) * %v = %v, want %v", tt.axis, tt.angle, tt.in, got, tt.want)
			}
		})
	}
}
