package runtime

import (
	"io"
	"time"

	"github.com/haasonsaas/skillrt/internal/obs"
)

func obsSkillLog(w io.Writer, message string) {
	obs.SkillLog(w, message)
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
