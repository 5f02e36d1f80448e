package provisioner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxNameAttempts bounds the uniqueness-suffix scan for colliding folder names.
const maxNameAttempts = 100

// DeriveFolderName builds the project folder name for a run started at now,
// for example Project_03_05_2024_1407 for 2024-03-05 14:07. The name is a
// pure function of prefix and clock so same-minute runs derive the same base
// name and get disambiguated by nextAvailableName.
func DeriveFolderName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", prefix, now.Format("01_02_2006"), now.Format("1504"))
}

// nextAvailableName returns name, or the first suffixed variant (name_2,
// name_3, ...) with no existing entry under baseDir. Any existing entry,
// directory or not, counts as taken.
func nextAvailableName(baseDir, name string) (string, error) {
	for attempt := 1; attempt <= maxNameAttempts; attempt++ {
		candidate := name
		if attempt > 1 {
			candidate = fmt.Sprintf("%s_%d", name, attempt)
		}

		_, err := os.Stat(filepath.Join(baseDir, candidate))
		if err == nil {
			continue
		}
		if os.IsNotExist(err) {
			return candidate, nil
		}
		return "", err
	}
	return "", fmt.Errorf("%w: %s", ErrFolderCollision, name)
}
