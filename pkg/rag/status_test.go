package rag

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"initialized to validated", StatusInitialized, StatusDocumentValidated, true},
		{"initialized to no document", StatusInitialized, StatusNoDocument, true},
		{"initialized skips ahead", StatusInitialized, StatusQueryEmbedded, false},
		{"validated to processed", StatusDocumentValidated, StatusDocumentProcessed, true},
		{"no document to skipped", StatusNoDocument, StatusSkipped, true},
		{"processed to query embedded", StatusDocumentProcessed, StatusQueryEmbedded, true},
		{"skipped to query embedded", StatusSkipped, StatusQueryEmbedded, true},
		{"query embedded to ready", StatusQueryEmbedded, StatusReadyForRetrieval, true},
		{"ready to retrieved", StatusReadyForRetrieval, StatusDocumentsRetrieved, true},
		{"retrieved to completed", StatusDocumentsRetrieved, StatusCompleted, true},
		{"no rewind", StatusDocumentsRetrieved, StatusInitialized, false},
		{"completed is terminal", StatusCompleted, StatusError, false},
		{"error is absorbing", StatusError, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransition(tt.to); got != tt.want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestErrorReachableFromEveryNonTerminal(t *testing.T) {
	nonTerminal := []Status{
		StatusInitialized,
		StatusDocumentValidated,
		StatusNoDocument,
		StatusDocumentProcessed,
		StatusSkipped,
		StatusQueryEmbedded,
		StatusReadyForRetrieval,
		StatusDocumentsRetrieved,
	}
	for _, s := range nonTerminal {
		if !s.CanTransition(StatusError) {
			t.Errorf("CanTransition(%s -> error) = false, want true", s)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !StatusCompleted.Terminal() {
		t.Error("Terminal(completed) = false, want true")
	}
	if !StatusError.Terminal() {
		t.Error("Terminal(error) = false, want true")
	}
	if StatusInitialized.Terminal() {
		t.Error("Terminal(initialized) = true, want false")
	}
}
