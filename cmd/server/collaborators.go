package main

import (
	"context"

	"sentinela/internal/ports"
	"sentinela/pkg/platform/sentinel"
)

// The generative collaborators are external systems configured per
// deployment. Until one is wired, every call reports unavailable; the core
// degrades exactly as it would during a network outage.

type offlineRiskAssessor struct{}

func (offlineRiskAssessor) Assess(context.Context, ports.PatientProfile, string, []string) (*ports.TriageResult, error) {
	return nil, sentinel.ErrUnavailable
}

type offlineEndemicAssessor struct{}

func (offlineEndemicAssessor) Assess(context.Context, ports.EndemicAnswers, ports.AgeSex) (*ports.EndemicAssessment, error) {
	return nil, sentinel.ErrUnavailable
}

type offlineDocumentExtractor struct{}

func (offlineDocumentExtractor) Extract(context.Context, []byte, string) (*ports.Extraction, error) {
	return nil, sentinel.ErrUnavailable
}

type offlineAddressSuggester struct{}

func (offlineAddressSuggester) Suggest(context.Context, string) ([]ports.Suggestion, error) {
	return nil, sentinel.ErrUnavailable
}
