package jenkins

import "fmt"

// ConnectivityError reports a Jenkins instance that could not be reached or
// refused the configured credentials on a read operation.
type ConnectivityError struct {
	URL string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("jenkins unreachable at %s: %v", e.URL, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// JobError reports a failed job create or update.
type JobError struct {
	Job string
	Err error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("jenkins job %s: %v", e.Job, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// PluginInstallError reports a single failed plugin installation request.
type PluginInstallError struct {
	Plugin string
	Err    error
}

func (e *PluginInstallError) Error() string {
	return fmt.Sprintf("install plugin %s: %v", e.Plugin, e.Err)
}

func (e *PluginInstallError) Unwrap() error { return e.Err }
