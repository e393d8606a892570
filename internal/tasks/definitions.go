package tasks

// DefineTasks registers all available tasks
func DefineTasks() {
	// Register general tasks
	RegisterHandler(LogInfoTask.TaskID(), LogInfoTask.HandleExecution)

	// Register fee jobs
	RegisterHandler(GenerateMonthlyFeesTask.TaskID(), GenerateMonthlyFeesTask.HandleExecution)
	RegisterHandler(SweepOverdueFeesTask.TaskID(), SweepOverdueFeesTask.HandleExecution)

	// Register notification tasks
	RegisterHandler(SendSwapNotificationTask.TaskID(), SendSwapNotificationTask.HandleExecution)
}
