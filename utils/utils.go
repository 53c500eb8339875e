package utils

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/oklog/ulid"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// Ternary returns a if cond is true, otherwise b.
func Ternary(cond bool, a, b any) any {
	if cond {
		return a
	}
	return b
}

// Unmarshal serializes and deserializes any from into the object
// return error if occurred
func Unmarshal(from, object any) error {
	reformatted := reformatInnerMaps(from)
	b, err := json.Marshal(reformatted)
	if err != nil {
		return fmt.Errorf("failed to marshal object: %s", err)
	}
	err = json.Unmarshal(b, object)
	if err != nil {
		return fmt.Errorf("failed to unmarshal object: %s", err)
	}
	return nil
}

// UnmarshalFile reads the JSON or YAML file at filePath and unmarshals it
// into dest, decrypting the content first when decrypt is set.
func UnmarshalFile(filePath string, dest any, decrypt bool) error {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file[%s]: %s", filePath, err)
	}

	content := string(raw)
	if decrypt {
		content, err = DecryptConfig(content)
		if err != nil {
			return fmt.Errorf("failed to decrypt file[%s]: %s", filePath, err)
		}
	}

	if err := yaml.Unmarshal([]byte(content), dest); err != nil {
		return fmt.Errorf("failed to unmarshal file[%s]: %s", filePath, err)
	}
	return nil
}

// CheckIfFilesExists verifies all the passed paths exist on disk.
func CheckIfFilesExists(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("failed to retrieve file[%s]: %s", file, err)
		}
	}
	return nil
}

// reformatInnerMaps converts map[any]any into map[string]any recursively so
// values decoded from YAML survive a JSON round trip.
func reformatInnerMaps(valueI any) any {
	switch value := valueI.(type) {
	case []any:
		for i, subValue := range value {
			value[i] = reformatInnerMaps(subValue)
		}
		return value
	case map[any]any:
		newMap := make(map[string]any, len(value))
		for k, subValue := range value {
			newMap[fmt.Sprint(k)] = reformatInnerMaps(subValue)
		}
		return newMap
	case map[string]any:
		for k, subValue := range value {
			value[k] = reformatInnerMaps(subValue)
		}
		return value
	default:
		return valueI
	}
}

// ArrayContains checks if an element is present in the array via the match
// function and returns its index
func ArrayContains[T any](array []T, match func(elem T) bool) (int, bool) {
	for idx, elem := range array {
		if match(elem) {
			return idx, true
		}
	}
	return -1, false
}

// IsValidSubcommand reports whether the passed subcommand is registered on
// the root command.
func IsValidSubcommand(available []*cobra.Command, sub string) bool {
	for _, command := range available {
		if sub == command.Use {
			return true
		}
	}
	return false
}

// ULID returns a lexicographically sortable unique id.
func ULID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// TimestampedFileName builds unique file names so repeated runs never
// overwrite each other's output.
func TimestampedFileName(extension string) string {
	return fmt.Sprintf("%d_%s.%s", time.Now().UnixMilli(), strings.ToLower(ULID()), extension)
}
