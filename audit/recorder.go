package audit

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder returns an observer that writes one trail row per tool
// invocation. A recording failure is logged, not returned. Result text is
// not stored; log fetches can run to megabytes.
func Recorder(store *Store, logger *slog.Logger) func(name string, args map[string]any, result string, err error, elapsed time.Duration) {
	return func(name string, args map[string]any, result string, err error, elapsed time.Duration) {
		inv := Invocation{
			InvocationID: uuid.New().String()[:8],
			Tool:         name,
			Arguments:    marshalArgs(args),
			Status:       StatusOK,
			DurationMS:   elapsed.Milliseconds(),
		}
		if err != nil {
			inv.Status = StatusError
			inv.Detail = err.Error()
		}

		if insertErr := store.Insert(inv); insertErr != nil {
			logger.Warn("audit: record failed", "tool", name, "error", insertErr)
		}
	}
}

func marshalArgs(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}
