package integration

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	. "github.com/onsi/gomega"
)

var (
	tempLogfile *os.File
)

func setupTempLogfile() error {
	file, err := os.CreateTemp("", "router_error_log")
	if err != nil {
		return err
	}
	tempLogfile = file
	return nil
}

func resetTempLogfile() {
	tempLogfile.Seek(0, 0)
	tempLogfile.Truncate(0)
}

func cleanupTempLogfile() {
	if tempLogfile != nil {
		tempLogfile.Close()
		os.Remove(tempLogfile.Name())
	}
}

func routerLogEntries() []map[string]interface{} {
	file, err := os.Open(tempLogfile.Name())
	Expect(err).NotTo(HaveOccurred())
	defer file.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]interface{}
		Expect(json.Unmarshal(scanner.Bytes(), &entry)).To(Succeed())
		entries = append(entries, entry)
	}
	Expect(scanner.Err()).NotTo(HaveOccurred())
	return entries
}

func routerLogMessages() []string {
	var messages []string
	for _, entry := range routerLogEntries() {
		if msg, ok := entry["message"].(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

func lastRouterErrorLogEntry() map[string]interface{} {
	var last map[string]interface{}

	Eventually(func() map[string]interface{} {
		for _, entry := range routerLogEntries() {
			if entry["level"] == "error" {
				last = entry
			}
		}
		return last
	}).ShouldNot(BeNil(), "No error log line found after 1 second")

	return last
}

func routerLogged(substring string) bool {
	for _, msg := range routerLogMessages() {
		if strings.Contains(msg, substring) {
			return true
		}
	}
	return false
}
