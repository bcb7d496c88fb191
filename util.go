package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"regexp"
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSq returns the squared distance between two points
func DistanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// MassToRadius converts cell mass to its collision radius
func MassToRadius(mass float64) float64 {
	return 4 + math.Sqrt(mass)*6
}

// MathLog returns log base `base` of v
func MathLog(v, base float64) float64 {
	return math.Log(v) / math.Log(base)
}

// PointInCircle reports whether point (px,py) lies inside the circle at (cx,cy) with radius r
func PointInCircle(px, py, cx, cy, r float64) bool {
	dx := px - cx
	dy := py - cy
	return dx*dx+dy*dy <= r*r
}

var nickRe = regexp.MustCompile(`^\w*$`)
var tagRe = regexp.MustCompile(`(<([^>]+)>)`)

// ValidNick checks a display name against the allowed alphanumeric pattern
func ValidNick(nick string) bool {
	return nickRe.MatchString(nick)
}

// SanitizeName strips HTML tags from a client-provided string
func SanitizeName(s string) string {
	return tagRe.ReplaceAllString(s, "")
}

// randFloat returns a random float64 in [0, 1) using a xorshift generator
// seeded from crypto/rand. Not crypto-strength; game use only.
var randSrc uint64

func randFloat() float64 {
	randSrc ^= randSrc << 13
	randSrc ^= randSrc >> 7
	randSrc ^= randSrc << 17
	if randSrc == 0 {
		randSrc = 1
	}
	return float64(randSrc%10000) / 10000.0
}

func init() {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	for i, v := range b {
		randSrc |= uint64(v) << (uint(i) * 8)
	}
	if randSrc == 0 {
		randSrc = 1
	}
}
