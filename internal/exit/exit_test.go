package exit

import (
	"bytes"
	"testing"
)

func TestResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   func(*bytes.Buffer) *Result
		wantCode int
		wantText string
	}{
		{
			name:     "success",
			result:   func(b *bytes.Buffer) *Result { return Success(b, "ok\n") },
			wantCode: CodeSuccess,
			wantText: "ok\n",
		},
		{
			name:     "error",
			result:   func(b *bytes.Buffer) *Result { return Errorf(b, "Error: %s\n", "boom") },
			wantCode: CodeFailure,
			wantText: "Error: boom\n",
		},
		{
			name:     "usage",
			result:   func(b *bytes.Buffer) *Result { return Usage(b, "usage\n") },
			wantCode: CodeUsage,
			wantText: "usage\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			result := tt.result(&buf)
			result.Print()

			if result.ExitCode != tt.wantCode {
				t.Fatalf("ExitCode = %d, want %d", result.ExitCode, tt.wantCode)
			}
			if buf.String() != tt.wantText {
				t.Fatalf("output = %q, want %q", buf.String(), tt.wantText)
			}
		})
	}
}

func TestStatusPrintsNothing(t *testing.T) {
	t.Parallel()

	result := Status(7)
	result.Print()

	if result.ExitCode != 7 {
		t.Fatalf("ExitCode = %d, want 7", result.ExitCode)
	}
}
