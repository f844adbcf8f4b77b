package services

import (
	"context"
	"fmt"
	"time"
)

// ReportScheduler drives the automatic Google Sheets export, either at
// a fixed interval or once a day at a configured time.
type ReportScheduler struct {
	sheets   *SheetsService
	logger   *LoggerService
	ticker   *time.Ticker
	stopChan chan bool
	running  bool
}

// NewReportScheduler creates a stopped scheduler
func NewReportScheduler(sheets *SheetsService, logger *LoggerService) *ReportScheduler {
	return &ReportScheduler{
		sheets:   sheets,
		logger:   logger,
		stopChan: make(chan bool),
	}
}

// Start begins the scheduler. A disabled configuration is not an error;
// the scheduler simply stays stopped.
func (s *ReportScheduler) Start() error {
	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	config, err := s.sheets.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}

	if !config.IsEnabled || !config.AutoSync {
		s.logger.LogInfo("Sheets auto-sync is disabled")
		return nil
	}

	s.running = true
	go s.run()

	s.logger.LogInfo("Report scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *ReportScheduler) Stop() {
	if !s.running {
		return
	}

	s.stopChan <- true
	s.running = false

	if s.ticker != nil {
		s.ticker.Stop()
	}

	s.logger.LogInfo("Report scheduler stopped")
}

// run is the main scheduler loop
func (s *ReportScheduler) run() {
	// Initial delay before first check
	time.Sleep(30 * time.Second)

	for {
		config, err := s.sheets.GetConfig()
		if err != nil {
			s.logger.LogError("Scheduler could not read config", err)
			time.Sleep(1 * time.Minute)
			continue
		}

		if !config.IsEnabled || !config.AutoSync {
			s.logger.LogInfo("Auto-sync disabled, stopping scheduler")
			s.running = false
			return
		}

		var duration time.Duration
		if config.SyncMode == "daily" {
			duration = s.timeUntilDailySync(config.SyncTime)
		} else {
			duration = time.Duration(config.SyncInterval) * time.Minute
		}

		s.logger.LogInfo(fmt.Sprintf("Next sheets sync scheduled in %v", duration))
		s.ticker = time.NewTicker(duration)

		select {
		case <-s.ticker.C:
			if err := s.sheets.SyncNow(context.Background()); err != nil {
				s.logger.LogError("Scheduled sheets sync failed", err)
			} else {
				s.logger.LogInfo("Scheduled sheets sync completed")
			}
			s.ticker.Stop()

		case <-s.stopChan:
			if s.ticker != nil {
				s.ticker.Stop()
			}
			return
		}
	}
}

// timeUntilDailySync calculates the wait until the configured HH:MM
func (s *ReportScheduler) timeUntilDailySync(syncTime string) time.Duration {
	now := time.Now()

	targetTime, err := time.Parse("15:04", syncTime)
	if err != nil {
		s.logger.LogWarning("Invalid sync time, using 23:00", syncTime)
		targetTime, _ = time.Parse("15:04", "23:00")
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), targetTime.Hour(), targetTime.Minute(), 0, 0, now.Location())
	if now.After(target) {
		target = target.Add(24 * time.Hour)
	}

	return target.Sub(now)
}

// Restart stops and starts the scheduler after a config change
func (s *ReportScheduler) Restart() error {
	s.Stop()
	time.Sleep(1 * time.Second)
	return s.Start()
}

// GetStatus reports the scheduler state for the settings screen
func (s *ReportScheduler) GetStatus() map[string]interface{} {
	config, _ := s.sheets.GetConfig()

	status := map[string]interface{}{
		"running": s.running,
		"enabled": false,
	}

	if config != nil {
		status["enabled"] = config.IsEnabled && config.AutoSync
		status["sync_mode"] = config.SyncMode
		status["sync_interval"] = config.SyncInterval
		status["sync_time"] = config.SyncTime
		status["last_sync"] = config.LastSync
		status["last_sync_status"] = config.LastSyncStatus
		status["total_syncs"] = config.TotalSyncs
	}

	return status
}
