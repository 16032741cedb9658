// 指示: miu200521358
// Package mmath はリグ計算で使うベクトル・回転・トランスフォームを提供する。
package mmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// EPSILON は比較・ゼロ除算回避に使う許容誤差。
	EPSILON = 1e-8
)

// Vec2 は2次元ベクトルを表す。
type Vec2 struct {
	X float64
	Y float64
}

// NearEquals は許容誤差内で等しいか判定する。
func (v Vec2) NearEquals(other Vec2, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon && math.Abs(v.Y-other.Y) <= epsilon
}

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

var (
	// ZERO_VEC3 はゼロベクトル。
	ZERO_VEC3 = Vec3{}
	// ONE_VEC3 は全要素1のベクトル。
	ONE_VEC3 = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
	// UNIT_X_VEC3 はX軸単位ベクトル。
	UNIT_X_VEC3 = Vec3{Vec: r3.Vec{X: 1}}
	// UNIT_Y_VEC3 はY軸単位ベクトル。
	UNIT_Y_VEC3 = Vec3{Vec: r3.Vec{Y: 1}}
	// UNIT_Z_VEC3 はZ軸単位ベクトル。
	UNIT_Z_VEC3 = Vec3{Vec: r3.Vec{Z: 1}}
)

// NewVec3ByValues は要素からベクトルを生成する。
func NewVec3ByValues(x, y, z float64) Vec3 {
	return Vec3{Vec: r3.Vec{X: x, Y: y, Z: z}}
}

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// MulScalar はスカラー倍を返す。
func (v Vec3) MulScalar(s float64) Vec3 {
	return Vec3{Vec: r3.Scale(s, v.Vec)}
}

// Muled は要素ごとの積を返す。
func (v Vec3) Muled(other Vec3) Vec3 {
	return NewVec3ByValues(v.X*other.X, v.Y*other.Y, v.Z*other.Z)
}

// SafeDived は要素ごとの商を返す。除数がゼロに近い要素は0とする。
func (v Vec3) SafeDived(other Vec3) Vec3 {
	return v.Muled(other.SafeReciprocal())
}

// SafeReciprocal は要素ごとの逆数を返す。ゼロに近い要素は0とする。
func (v Vec3) SafeReciprocal() Vec3 {
	return NewVec3ByValues(safeReciprocal(v.X), safeReciprocal(v.Y), safeReciprocal(v.Z))
}

// Length はベクトル長を返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// Lerp は線形補間結果を返す。
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Added(other.Subed(v).MulScalar(t))
}

// Component は0:X 1:Y 2:Z の要素を返す。
func (v Vec3) Component(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// WithComponent は指定要素を置き換えたベクトルを返す。
func (v Vec3) WithComponent(axis int, value float64) Vec3 {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	default:
		v.Z = value
	}
	return v
}

// NearEquals は許容誤差内で等しいか判定する。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}

// safeReciprocal はゼロ除算を避けた逆数を返す。
func safeReciprocal(value float64) float64 {
	if math.Abs(value) <= EPSILON {
		return 0
	}
	return 1 / value
}
