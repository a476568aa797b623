package purc

import "os"

// Environment variables observed by the core runtime.
const (
	// EnvEJSONLogEnable turns on tokenizer state tracing to stderr.
	EnvEJSONLogEnable = "PURC_EJSON_LOG_ENABLE"
	// EnvDVObjsPath is the search path for loadable dynamic objects.
	// Loading itself is handled by an external collaborator.
	EnvDVObjsPath = "PURC_DVOBJS_PATH"
)

// Instance is a single-goroutine runtime instance. Variants created inside
// one instance must not cross to another. Containers carry no internal
// locking, so a variant is not safe to share across goroutines.
type Instance struct {
	AppName    string
	RunnerName string

	lastError error
}

// NewInstance initializes a runtime instance for the given app and runner.
func NewInstance(appName, runnerName string) *Instance {
	return &Instance{AppName: appName, RunnerName: runnerName}
}

// SetLastError records err as the most recent error of this instance.
func (inst *Instance) SetLastError(err error) {
	inst.lastError = err
}

// LastError returns the most recent error recorded on this instance.
func (inst *Instance) LastError() error {
	return inst.lastError
}

// ClearError drops the recorded error.
func (inst *Instance) ClearError() {
	inst.lastError = nil
}

// EJSONLogEnabled reports whether tokenizer tracing is requested through
// the environment.
func EJSONLogEnabled() bool {
	v := os.Getenv(EnvEJSONLogEnable)
	return v == "1" || v == "true" || v == "TRUE" || v == "True"
}

// DVObjsPath returns the configured dynamic-object search path.
func DVObjsPath() string {
	return os.Getenv(EnvDVObjsPath)
}
