// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/num/quat"
)

// Quaternion は回転を表す四元数。Real がW、Imag/Jmag/Kmag がXYZ。
type Quaternion struct {
	quat.Number
}

// NewQuaternion は単位四元数を生成する。
func NewQuaternion() Quaternion {
	return Quaternion{Number: quat.Number{Real: 1}}
}

// NewQuaternionByValues はXYZWから四元数を生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{Number: quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}}
}

// NewQuaternionFromAxisAngle は軸と角度(ラジアン)から四元数を生成する。
func NewQuaternionFromAxisAngle(axis Vec3, radians float64) Quaternion {
	return fromMgl(mgl64.QuatRotate(radians, mgl64.Vec3{axis.X, axis.Y, axis.Z}).Normalize())
}

// X はX成分を返す。
func (q Quaternion) X() float64 { return q.Imag }

// Y はY成分を返す。
func (q Quaternion) Y() float64 { return q.Jmag }

// Z はZ成分を返す。
func (q Quaternion) Z() float64 { return q.Kmag }

// W はW成分を返す。
func (q Quaternion) W() float64 { return q.Real }

// Muled はハミルトン積 q*other を返す。other を先に適用する回転になる。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{Number: quat.Mul(q.Number, other.Number)}
}

// Normalized は正規化した四元数を返す。長さがゼロに近い場合は単位四元数を返す。
func (q Quaternion) Normalized() Quaternion {
	length := quat.Abs(q.Number)
	if length <= EPSILON {
		return NewQuaternion()
	}
	return Quaternion{Number: quat.Scale(1/length, q.Number)}
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	if quat.Abs(q.Number) <= EPSILON {
		return NewQuaternion()
	}
	return Quaternion{Number: quat.Inv(q.Number)}
}

// Dot は内積を返す。
func (q Quaternion) Dot(other Quaternion) float64 {
	return q.Real*other.Real + q.Imag*other.Imag + q.Jmag*other.Jmag + q.Kmag*other.Kmag
}

// MulVec3 はベクトルを回転させる。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q.Number, p), quat.Conj(q.Number))
	return NewVec3ByValues(r.Imag, r.Jmag, r.Kmag)
}

// Slerp は球面線形補間結果を返す。
func (q Quaternion) Slerp(other Quaternion, t float64) Quaternion {
	return fromMgl(mgl64.QuatSlerp(q.toMgl(), other.toMgl(), t))
}

// NearEquals は同じ回転を表すか判定する。q と -q は同一視する。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	return math.Abs(math.Abs(q.Normalized().Dot(other.Normalized()))-1) <= epsilon
}

// ToRotator はZYX順のオイラー角(度)へ変換する。
func (q Quaternion) ToRotator() Rotator {
	n := q.Normalized()
	x, y, z, w := n.Imag, n.Jmag, n.Kmag, n.Real

	sinPitch := 2 * (w*y - z*x)
	if sinPitch > 1 {
		sinPitch = 1
	} else if sinPitch < -1 {
		sinPitch = -1
	}

	roll := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))
	pitch := math.Asin(sinPitch)
	yaw := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return Rotator{
		Roll:  mgl64.RadToDeg(roll),
		Pitch: mgl64.RadToDeg(pitch),
		Yaw:   mgl64.RadToDeg(yaw),
	}
}

// toMgl は mathgl の四元数へ変換する。
func (q Quaternion) toMgl() mgl64.Quat {
	return mgl64.Quat{W: q.Real, V: mgl64.Vec3{q.Imag, q.Jmag, q.Kmag}}
}

// fromMgl は mathgl の四元数から変換する。
func fromMgl(q mgl64.Quat) Quaternion {
	return NewQuaternionByValues(q.V[0], q.V[1], q.V[2], q.W)
}
