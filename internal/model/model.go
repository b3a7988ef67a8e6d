// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// AcademicLevel is a CEFR language level.
type AcademicLevel string

// Academic levels, lowest first.
const (
	LevelA1 AcademicLevel = "A1"
	LevelA2 AcademicLevel = "A2"
	LevelB1 AcademicLevel = "B1"
	LevelB2 AcademicLevel = "B2"
	LevelC1 AcademicLevel = "C1"
	LevelC2 AcademicLevel = "C2"
)

// Levels lists every valid academic level in ascending order.
var Levels = []AcademicLevel{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// ParseLevel normalizes s (case-insensitive) into an AcademicLevel.
func ParseLevel(s string) (AcademicLevel, bool) {
	l := AcademicLevel(strings.ToUpper(strings.TrimSpace(s)))
	return l, l.Valid()
}

// Valid reports whether l is one of A1..C2.
func (l AcademicLevel) Valid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

// ExchangeOffer is a posted request pairing a native and a target language.
// Offers are treated as immutable snapshots of server state.
type ExchangeOffer struct {
	ID               string        `json:"id"`
	OwnerID          string        `json:"idTeacherCreator"`
	University       string        `json:"university"`
	QuantityStudents int           `json:"quantityStudents"`
	AcademicLevel    AcademicLevel `json:"academicLevel"`
	NativeLanguage   string        `json:"nativeLanguage"`
	TargetLanguage   string        `json:"targetLanguage"`
}

// Credentials are the session entries persisted at login.
// Either field may be empty when the user is signed out.
type Credentials struct {
	Token      string
	Identifier string // email
}

// Complete reports whether both token and identifier are present.
func (c Credentials) Complete() bool {
	return c.Token != "" && c.Identifier != ""
}

// DefaultDisplayName is shown until the identity endpoint answers.
const DefaultDisplayName = "Usuario"

// Identity is the resolved display identity of the signed-in user.
type Identity struct {
	DisplayName string `json:"displayName"`
	Identifier  string `json:"identifier"`
}

// EditFields is the user-entered replacement record for an owned offer.
// QuantityStudents is kept as raw input so it can be validated before sending.
type EditFields struct {
	NativeLanguage   string
	TargetLanguage   string
	AcademicLevel    AcademicLevel
	QuantityStudents string
	BeginDate        time.Time
	EndDate          time.Time
}

// Snapshot is the last successfully fetched content of a feed.
type Snapshot struct {
	Feed      string
	Offers    []ExchangeOffer
	FetchedAt time.Time
}

// Feed names used for snapshots and metrics.
const (
	FeedPublic = "public"
	FeedOwned  = "owned"
)

// Session key constants.
const (
	SessionToken = "userToken"
	SessionEmail = "email"
)
