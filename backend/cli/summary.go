package cli

import (
	"fmt"
	"io"
	"time"

	redeemscan "github.com/klppl/digg-invite-brutforce/backend/scanner/redeem"
)

func writeSummary(w io.Writer, s *redeemscan.Summary) {
	fmt.Fprintln(w)
	if s.Interrupted {
		fmt.Fprintln(w, "Summary (interrupted):")
	} else {
		fmt.Fprintln(w, "Summary:")
	}
	fmt.Fprintf(w, "   Time elapsed: %.2f seconds\n", s.Elapsed.Seconds())
	fmt.Fprintf(w, "   Total codes tested: %d\n", s.Tested)
	fmt.Fprintf(w, "   Completed attempts: %d/%d\n", s.Completed, s.Total)
	fmt.Fprintf(w, "   Valid codes found: %d (%d confirmed, %d unconfirmed)\n",
		len(s.Accepted), len(s.Confirmed()), len(s.LowConfidence()))
	if s.LogPath != "" {
		fmt.Fprintf(w, "   Results saved to: %s\n", s.LogPath)
	}

	if failed := s.FailedWorkers(); len(failed) > 0 {
		fmt.Fprintf(w, "\n   Worker failures (%d tokens left untested):\n", s.Orphaned())
		for _, r := range failed {
			fmt.Fprintf(w, "   - worker %d: %v\n", r.ID, r.Err)
		}
	}
	if len(s.PersistErrors) > 0 {
		fmt.Fprintln(w, "\n   Result log errors (codes kept in memory only):")
		for _, err := range s.PersistErrors {
			fmt.Fprintf(w, "   - %v\n", err)
		}
	}

	if len(s.Accepted) > 0 {
		fmt.Fprintln(w, "\nValid codes found:")
		for _, rec := range s.Accepted {
			fmt.Fprintf(w, "   - %s (%s, %s)\n", rec.Token, rec.Verdict, rec.FoundAt.Format(time.DateTime))
		}
	}
}
