package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LocalBackupProvider is the always-available offline backend of last resort.
// It produces a deterministic, clearly-labelled response at zero API cost so
// that the fallback chain can terminate without raising.
type LocalBackupProvider struct {
	// Delay simulates local inference latency. Zero means no delay.
	Delay time.Duration
}

// Invoke renders the backup response for a prompt.
func (p *LocalBackupProvider) Invoke(ctx context.Context, prompt string, params Params) (*Result, error) {
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	summary := prompt
	if len(summary) > 200 {
		summary = summary[:200] + "..."
	}

	content := fmt.Sprintf(`**[BACKUP SYSTEM RESPONSE]**

Analysis for the provided request:

%s

**Key Considerations:**
- Primary AI systems are temporarily unavailable
- This response is generated by backup local processing
- Limited context analysis capabilities in backup mode
- Recommendations may require human validation

**Suggested Actions:**
1. Review the request manually for critical decisions
2. Retry with primary systems when available
3. Consider escalating to human expert if urgent

**Status:** Backup system operational - primary systems recovering`, summary)

	return &Result{
		Content:    content,
		Tokens:     len(strings.Fields(content)),
		Cost:       0,
		Confidence: 0.6,
	}, nil
}
