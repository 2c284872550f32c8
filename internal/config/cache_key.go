package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionAnswersKey returns the autosave hash for an exam session (field = question index).
func (r *CacheKeyStruct) SessionAnswersKey(sessionID string) string {
	return fmt.Sprintf("exam_session:%s:answers", sessionID)
}

// SessionTimerKey holds the last persisted remaining seconds of a running session.
func (r *CacheKeyStruct) SessionTimerKey(sessionID string) string {
	return fmt.Sprintf("exam_session:%s:remaining", sessionID)
}

// SessionSubmittedKey marks a session whose submission has been queued.
func (r *CacheKeyStruct) SessionSubmittedKey(sessionID string) string {
	return fmt.Sprintf("exam_session:%s:submitted", sessionID)
}

// CandidateTokenKey stores the JTI of the latest candidate token for a session.
func (r *CacheKeyStruct) CandidateTokenKey(sessionID string) string {
	return fmt.Sprintf("exam_session:%s:jti", sessionID)
}

// JoinAttemptsKey counts exam-token join attempts per client IP.
func (r *CacheKeyStruct) JoinAttemptsKey(ip string) string {
	return fmt.Sprintf("join_attempts:%s", ip)
}

// MonitorChannel returns the Redis PubSub channel for the admin live monitor.
func (r *CacheKeyStruct) MonitorChannel() string {
	return "exam_sessions:monitor"
}

// SessionMonitorChannel returns the Redis PubSub channel for a single session.
func (r *CacheKeyStruct) SessionMonitorChannel(sessionID string) string {
	return fmt.Sprintf("exam_session:%s:monitor", sessionID)
}

var CacheKey = NewCacheKeyStruct()
