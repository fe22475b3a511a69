package jobs

import (
	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
)

// AdminMiddleware restricts job management to administrators
func AdminMiddleware(request *evo.Request) error {
	if request.User().Anonymous() {
		return response.ErrForbidden
	}
	var user = request.User().Interface().(*auth.User)
	if user.Type != auth.UserTypeAdministrator {
		return response.ErrForbidden
	}
	return request.Next()
}

// GetJobs returns all registered jobs with their status
// GET /api/admin/jobs
func GetJobs(req *evo.Request) interface{} {
	s := GetScheduler()
	jobs := GetRegistry().List()

	infos := make([]JobInfo, 0, len(jobs))
	for _, job := range jobs {
		info := JobInfo{
			Name:        job.Name,
			Description: job.Description,
			Schedule:    job.Schedule,
			Enabled:     job.Enabled,
		}
		if s != nil {
			info.IsRunning = s.IsRunning(job.Name)
		}
		if last, err := GetLastExecution(job.Name); err == nil {
			info.LastExecution = last
		}
		infos = append(infos, info)
	}

	return response.List(infos, len(infos))
}

// GetJobExecutions returns recent executions, optionally for one job
// GET /api/admin/jobs/executions?job=&limit=
func GetJobExecutions(req *evo.Request) interface{} {
	jobName := req.Query("job").String()
	limit := req.Query("limit").Int()

	executions, err := GetExecutionHistory(jobName, limit)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.List(executions, len(executions))
}

// RunJob triggers immediate execution of a job
// POST /api/admin/jobs/:name/run
func RunJob(req *evo.Request) interface{} {
	jobName := req.Param("name").String()
	if jobName == "" {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "Job name is required", 400))
	}

	s := GetScheduler()
	if s == nil {
		return response.Error(response.NewError(response.ErrorCodeInternalError, "Scheduler is not running", 503))
	}
	if s.IsRunning(jobName) {
		return response.Error(response.NewError(response.ErrorCodeConflict, "Job is already running", 409))
	}
	if !s.RunNow(jobName) {
		return response.Error(response.NewError(response.ErrorCodeNotFound, "Job not found", 404))
	}

	return response.Message("Job triggered")
}
