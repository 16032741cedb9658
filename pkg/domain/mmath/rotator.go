// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotator はオイラー角(度)を表す。回転順はX(Roll)→Y(Pitch)→Z(Yaw)。
type Rotator struct {
	Roll  float64
	Pitch float64
	Yaw   float64
}

// NewRotatorByValues は要素から Rotator を生成する。
func NewRotatorByValues(roll, pitch, yaw float64) Rotator {
	return Rotator{Roll: roll, Pitch: pitch, Yaw: yaw}
}

// Quaternion は四元数へ変換する。
func (r Rotator) Quaternion() Quaternion {
	q := mgl64.AnglesToQuat(
		mgl64.DegToRad(r.Yaw),
		mgl64.DegToRad(r.Pitch),
		mgl64.DegToRad(r.Roll),
		mgl64.ZYX,
	)
	return fromMgl(q).Normalized()
}

// Added は要素ごとの和を返す。
func (r Rotator) Added(other Rotator) Rotator {
	return Rotator{Roll: r.Roll + other.Roll, Pitch: r.Pitch + other.Pitch, Yaw: r.Yaw + other.Yaw}
}

// MulScalar はスカラー倍を返す。
func (r Rotator) MulScalar(s float64) Rotator {
	return Rotator{Roll: r.Roll * s, Pitch: r.Pitch * s, Yaw: r.Yaw * s}
}

// Component は0:Roll 1:Pitch 2:Yaw の要素を返す。
func (r Rotator) Component(axis int) float64 {
	switch axis {
	case 0:
		return r.Roll
	case 1:
		return r.Pitch
	default:
		return r.Yaw
	}
}

// WithComponent は指定要素を置き換えた Rotator を返す。
func (r Rotator) WithComponent(axis int, value float64) Rotator {
	switch axis {
	case 0:
		r.Roll = value
	case 1:
		r.Pitch = value
	default:
		r.Yaw = value
	}
	return r
}

// UnwoundTo は各要素を reference から180度以内になるよう巻き戻す。
func (r Rotator) UnwoundTo(reference Rotator) Rotator {
	return Rotator{
		Roll:  WindRelativeAnglesDegrees(reference.Roll, r.Roll),
		Pitch: WindRelativeAnglesDegrees(reference.Pitch, r.Pitch),
		Yaw:   WindRelativeAnglesDegrees(reference.Yaw, r.Yaw),
	}
}

// NearEquals は許容誤差内で等しいか判定する。
func (r Rotator) NearEquals(other Rotator, epsilon float64) bool {
	return math.Abs(r.Roll-other.Roll) <= epsilon &&
		math.Abs(r.Pitch-other.Pitch) <= epsilon &&
		math.Abs(r.Yaw-other.Yaw) <= epsilon
}

// NewRotatorFromQuaternionClosest は q と同じ回転を表すオイラー角のうち preferred に最も近いものを返す。
func NewRotatorFromQuaternionClosest(q Quaternion, preferred Rotator) Rotator {
	primary := q.ToRotator()
	alternate := Rotator{
		Roll:  primary.Roll + 180,
		Pitch: 180 - primary.Pitch,
		Yaw:   primary.Yaw + 180,
	}

	primary = primary.UnwoundTo(preferred)
	alternate = alternate.UnwoundTo(preferred)
	if rotatorDistance(alternate, preferred) < rotatorDistance(primary, preferred) {
		return alternate
	}
	return primary
}

// WindRelativeAnglesDegrees は angle1 を angle0 から180度以内になるよう360度単位で補正した値を返す。
func WindRelativeAnglesDegrees(angle0, angle1 float64) float64 {
	diff := angle0 - angle1
	absDiff := math.Abs(diff)
	if absDiff > 180 {
		sign := 1.0
		if diff < 0 {
			sign = -1.0
		}
		angle1 += 360 * sign * math.Floor(absDiff/360+0.5)
	}
	return angle1
}

// rotatorDistance は要素差の絶対値和を返す。
func rotatorDistance(a, b Rotator) float64 {
	return math.Abs(a.Roll-b.Roll) + math.Abs(a.Pitch-b.Pitch) + math.Abs(a.Yaw-b.Yaw)
}
