package backend

// Environment variables handed to the remote job so it can report back to the
// tracking server.
const (
	EnvRunID        = "MLFLOW_RUN_ID"
	EnvExperimentID = "MLFLOW_EXPERIMENT_ID"
	EnvEntryPoint   = "TRAINING_ENTRY_POINT"
)

// BuildEnvironment returns the job variables for a run. The values are passed
// through verbatim.
func BuildEnvironment(runID, experimentID, command string) map[string]string {
	return map[string]string{
		EnvRunID:        runID,
		EnvExperimentID: experimentID,
		EnvEntryPoint:   command,
	}
}
