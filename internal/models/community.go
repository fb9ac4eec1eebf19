package models

import (
	"io"
	"time"
)

// CommunityStatus represents the review status of a community application
type CommunityStatus string

const (
	CommunityStatusPending  CommunityStatus = "pending"
	CommunityStatusApproved CommunityStatus = "approved"
	CommunityStatusRejected CommunityStatus = "rejected"
)

// statusTransitions lists the statuses reachable from each status.
// Terminal statuses have no entry.
var statusTransitions = map[CommunityStatus][]CommunityStatus{
	CommunityStatusPending: {CommunityStatusApproved, CommunityStatusRejected},
}

// IsValid reports whether the status is one of the known statuses
func (s CommunityStatus) IsValid() bool {
	switch s {
	case CommunityStatusPending, CommunityStatusApproved, CommunityStatusRejected:
		return true
	}
	return false
}

// IsDecision reports whether the status is an administrator decision (approved or rejected)
func (s CommunityStatus) IsDecision() bool {
	return s == CommunityStatusApproved || s == CommunityStatusRejected
}

// CanTransition reports whether an application may move from one status to another
func CanTransition(from, to CommunityStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DecidableFrom returns the statuses from which a transition to the given status is allowed
func DecidableFrom(to CommunityStatus) []CommunityStatus {
	var from []CommunityStatus
	for status, targets := range statusTransitions {
		for _, target := range targets {
			if target == to {
				from = append(from, status)
			}
		}
	}
	return from
}

// EnergyType represents the kind of energy a community produces
type EnergyType string

const (
	EnergyTypeSolar     EnergyType = "solar"
	EnergyTypeWind      EnergyType = "wind"
	EnergyTypeHydraulic EnergyType = "hydraulic"
	EnergyTypeBiomass   EnergyType = "biomass"
	EnergyTypeMixed     EnergyType = "mixed"
)

// IsValid reports whether the energy type is one of the known types
func (t EnergyType) IsValid() bool {
	switch t {
	case EnergyTypeSolar, EnergyTypeWind, EnergyTypeHydraulic, EnergyTypeBiomass, EnergyTypeMixed:
		return true
	}
	return false
}

// DocumentCategory is the slot a supporting document is uploaded into
type DocumentCategory string

const (
	DocumentTechnicalStudy   DocumentCategory = "technical_study"
	DocumentEconomicAnalysis DocumentCategory = "economic_analysis"
	DocumentLegalDocs        DocumentCategory = "legal_docs"
)

// DocumentCategories lists every accepted category in upload order
var DocumentCategories = []DocumentCategory{
	DocumentTechnicalStudy,
	DocumentEconomicAnalysis,
	DocumentLegalDocs,
}

// IsValid reports whether the category is one of the known categories
func (c DocumentCategory) IsValid() bool {
	for _, category := range DocumentCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Documents maps a document category to its blob reference
type Documents map[DocumentCategory]string

// Community represents a community application
type Community struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        EnergyType      `json:"type"`
	Location    string          `json:"location"`
	Capacity    int             `json:"capacity"` // kW
	Description string          `json:"description"`
	Status      CommunityStatus `json:"status"`
	OwnerID     string          `json:"ownerId"`
	Documents   Documents       `json:"documents"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// SubmitCommunityRequest represents the form fields of a community application
type SubmitCommunityRequest struct {
	Name        string     `json:"name"`
	Type        EnergyType `json:"type"`
	Location    string     `json:"location"`
	Capacity    int        `json:"capacity"`
	Description string     `json:"description"`
}

// DocumentUpload is a document received with a submission, not yet stored
type DocumentUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UpdateStatusRequest represents a request to decide a community application
type UpdateStatusRequest struct {
	Status CommunityStatus `json:"status"`
}
