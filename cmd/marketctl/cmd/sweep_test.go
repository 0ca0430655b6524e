package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usedgoods/marketplace/internal/service"
)

func TestPrintReport(t *testing.T) {
	report := &service.SweepReport{
		OrphanFiles: []string{"a.png"},
		OrphanRows:  []string{},
		Deleted:     []string{},
	}

	var buf bytes.Buffer
	printReport(&buf, report, false)
	assert.Equal(t, "orphan files: 1\n  a.png\norphan rows: 0\ndry run, pass --apply to delete orphan files\n", buf.String())

	buf.Reset()
	report.Deleted = []string{"a.png"}
	printReport(&buf, report, true)
	assert.Contains(t, buf.String(), "deleted files: 1\n")
}

func TestMigrateCmdHasSubcommands(t *testing.T) {
	names := []string{}
	for _, c := range MigrateCmd().Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "status"}, names)
}
