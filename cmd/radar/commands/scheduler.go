package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/scheduler"
	"github.com/wonny/radar/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/radar scheduler start
  go run ./cmd/radar scheduler list
  go run ./cmd/radar scheduler run daily_scan`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- daily_scan: 평일 scan.daily_at (기본 18:30 KST, DATABASE_URL 필요)
- health_check: 5분마다 (DB/Redis 연결 확인)

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerTimezone string
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerTimezone, "tz", "Asia/Seoul", "timezone for schedules and trade dates")
}

// initScheduler wires jobs against the runtime; the caller closes res
func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, *resources, error) {
	rt, err := bootstrap()
	if err != nil {
		return nil, nil, err
	}

	loc, err := time.LoadLocation(schedulerTimezone)
	if err != nil {
		return nil, nil, fmt.Errorf("load timezone %q: %w", schedulerTimezone, err)
	}

	res, err := openResources(cmd.Context(), rt)
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(rt.log, scheduler.WithLocation(loc))

	if source := res.snapshotSource(rt, true); source != nil {
		orch, err := rt.orchestrator(rt.metricsRegistry())
		if err != nil {
			res.Close()
			return nil, nil, err
		}

		// redis가 꺼져 있으면 결과는 로그로만 남김
		var store jobs.ResultStore
		if c := res.cache(); c != nil {
			store = c
		}
		if err := sched.AddJob(jobs.NewDailyScanJob(orch, source, store, loc, rt.log)); err != nil {
			res.Close()
			return nil, nil, err
		}
	} else {
		rt.log.Warn("DATABASE_URL not set, daily_scan not registered")
	}

	if err := sched.AddJob(jobs.NewHealthCheckJob(res.db, res.redis, rt.log)); err != nil {
		res.Close()
		return nil, nil, err
	}

	return sched, res, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	PrintHeader(out, "radar Scheduler")

	sched, res, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer res.Close()

	sched.Start()

	PrintSuccess(out, "Scheduler started successfully")
	printJobs(cmd, sched)
	PrintInfo(out, "Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)
	<-quit

	fmt.Fprintln(out, "Shutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, res, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer res.Close()

	printJobs(cmd, sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	sched, res, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer res.Close()

	result, err := sched.RunJobNow(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s completed in %s", result.JobName, result.Duration))
	return nil
}

func printJobs(cmd *cobra.Command, sched *scheduler.Scheduler) {
	out := cmd.OutOrStdout()
	stats := sched.GetJobStats()

	fmt.Fprintln(out, "Registered jobs:")
	widths := []int{14, 20}
	PrintTableHeader(out, []string{"JOB", "SCHEDULE"}, widths)
	for _, name := range sched.GetAllJobs() {
		PrintTableRow(out, []string{name, stats[name].Schedule}, widths)
	}
}
