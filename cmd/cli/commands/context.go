package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/charlesliao-stock/AIshiftschedule-sub001/internal/config"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/clients/lockclient"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/clients/queueclient"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/model"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/core/services"
	"github.com/charlesliao-stock/AIshiftschedule-sub001/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Unit     *services.Unit
	Database db.Database
	Locks    *lockclient.Client
	Queue    *queueclient.Client
	Logger   *zap.Logger
	Ctx      context.Context
	// Now is the clock used for editing-window checks
	Now func() time.Time
}

// Today returns the current date
func (a *AppContext) Today() model.Date {
	if a.Now == nil {
		return model.DateOf(time.Now())
	}
	return model.DateOf(a.Now())
}

// MonthKey parses a YYYY-MM argument into the unit's month key
func (a *AppContext) MonthKey(arg string) (db.MonthKey, error) {
	year, month, err := parseMonth(arg)
	if err != nil {
		return db.MonthKey{}, err
	}
	return db.MonthKey{UnitID: a.Unit.ID, Year: year, Month: month}, nil
}

func parseMonth(arg string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", arg)
	if err != nil {
		return 0, 0, fmt.Errorf("month must be YYYY-MM, got: %s", arg)
	}
	return t.Year(), t.Month(), nil
}

// readYAML decodes a YAML input file into out
func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)
