package models

import "strings"

// Firestore collections
const (
	ColRequests      = "requests"
	ColResources     = "resources"
	ColMatches       = "matches"
	ColUsers         = "users"
	ColVerifications = "verifications"
	ColMail          = "mail"
)

// Typed references between the three collections. A Match holds one of each;
// the ids are Firestore document ids in ColRequests / ColResources.
type (
	RequestID  string
	ResourceID string
	MatchID    string
)

// Category classifies both requests and resources.
type Category string

const (
	CategoryMedical   Category = "MEDICAL"
	CategoryShelter   Category = "SHELTER"
	CategoryFood      Category = "FOOD"
	CategoryTransport Category = "TRANSPORT"
)

var Categories = []Category{CategoryMedical, CategoryShelter, CategoryFood, CategoryTransport}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusMatched   RequestStatus = "MATCHED"
	StatusCompleted RequestStatus = "COMPLETED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusMatched, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Role string

const (
	RoleHelper Role = "HELPER"
	RoleSeeker Role = "SEEKER"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleHelper, RoleSeeker, RoleAdmin:
		return true
	}
	return false
}

// MatchStatus: PENDING on creation, RELEASED once an admin reopens the
// request. Reconciliation only looks at PENDING matches.
type MatchStatus string

const (
	MatchPending  MatchStatus = "PENDING"
	MatchReleased MatchStatus = "RELEASED"
)

// ParseCategory accepts any casing; "" and "ALL" mean no filter and return ("", true).
func ParseCategory(s string) (Category, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "ALL" {
		return "", true
	}
	c := Category(s)
	return c, c.Valid()
}
