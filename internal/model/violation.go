package model

import (
	"time"

	"github.com/google/uuid"
)

// ViolationType names a client-side proctoring signal.
type ViolationType string

const (
	ViolationTabSwitch    ViolationType = "tab_switch"
	ViolationWindowBlur   ViolationType = "window_blur"
	ViolationKeyPress     ViolationType = "key_press"
	ViolationResize       ViolationType = "resize"
	ViolationContextMenu  ViolationType = "context_menu"
	ViolationDevTools     ViolationType = "dev_tools"
	ViolationCopyPaste    ViolationType = "copy_paste"
	ViolationFullscreenEx ViolationType = "fullscreen_exit"
)

// Severity grades how suspicious a violation is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var defaultSeverity = map[ViolationType]Severity{
	ViolationTabSwitch:    SeverityMedium,
	ViolationWindowBlur:   SeverityLow,
	ViolationKeyPress:     SeverityLow,
	ViolationResize:       SeverityLow,
	ViolationContextMenu:  SeverityLow,
	ViolationDevTools:     SeverityHigh,
	ViolationCopyPaste:    SeverityMedium,
	ViolationFullscreenEx: SeverityMedium,
}

// KnownViolation reports whether t is a recognised violation type.
func KnownViolation(t ViolationType) bool {
	_, ok := defaultSeverity[t]
	return ok
}

// DefaultSeverity returns the severity used when the client does not send one.
func DefaultSeverity(t ViolationType) Severity {
	if s, ok := defaultSeverity[t]; ok {
		return s
	}
	return SeverityLow
}

// SecurityViolation is one recorded proctoring event.
type SecurityViolation struct {
	ExamSessionID uuid.UUID     `json:"exam_session_id"`
	ViolationType ViolationType `json:"violation_type"`
	Severity      Severity      `json:"severity"`
	Details       string        `json:"details,omitempty"`
	RecordedAt    time.Time     `json:"recorded_at"`
}

// ReportViolationRequest is the candidate payload for a proctoring event.
type ReportViolationRequest struct {
	ViolationType string `json:"violation_type" binding:"required,oneof=tab_switch window_blur key_press resize context_menu dev_tools copy_paste fullscreen_exit"`
	Severity      string `json:"severity" binding:"omitempty,oneof=low medium high"`
	Details       string `json:"details" binding:"max=1000"`
}
