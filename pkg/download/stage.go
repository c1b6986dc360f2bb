package download

import "fmt"

// Stage is a step of the redirect pipeline. Stages only move forward.
type Stage uint8

const (
	StageStart Stage = iota
	StageSecretResolved
	StageObjectConfigured
	StageExistenceConfirmed
	StagePresigned
	StageLogged
	StageRedirected
)

var stageNames = [...]string{
	StageStart:              "start",
	StageSecretResolved:     "secret_resolved",
	StageObjectConfigured:   "object_configured",
	StageExistenceConfirmed: "existence_confirmed",
	StagePresigned:          "presigned",
	StageLogged:             "logged",
	StageRedirected:         "redirected",
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", uint8(s))
}

// StageError reports the last stage reached before the pipeline failed.
type StageError struct {
	Err   error
	Stage Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("download: failed after %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
