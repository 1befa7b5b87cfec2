// Package ferrors defines the sentinel error taxonomy shared by every
// archive/restore/delete step, so callers can test outcomes with
// errors.Is instead of matching on message text.
package ferrors

import "github.com/pkg/errors"

// Sentinel errors returned (possibly wrapped) by the core pipeline steps.
var (
	ErrInvalidInput             = errors.New("invalid input")
	ErrPermissionDenied          = errors.New("permission denied")
	ErrAlreadyArchived          = errors.New("folder is already archived")
	ErrAlreadyPrepared          = errors.New("manifest already exists from a previous attempt")
	ErrPackFailed               = errors.New("small-file packing failed")
	ErrManifestFailed           = errors.New("manifest generation failed")
	ErrUploadFailed              = errors.New("upload failed")
	ErrVerificationFailed       = errors.New("checksum verification failed")
	ErrUnpackFailed             = errors.New("unpack failed")
	ErrDeleteVerificationFailed = errors.New("delete-time verification failed")
	ErrNotArchived               = errors.New("folder has no archive entry")
	ErrParentNotRecursive       = errors.New("parent archive entry is not recursive")
	ErrRegistryCorrupt          = errors.New("archive registry file is corrupt")
)

// StepError wraps a sentinel error with the local folder and remote URI
// context a user needs to retry the failing step.
type StepError struct {
	Err          error
	Step         string
	LocalFolder  string
	RemoteURI    string
}

func (e *StepError) Error() string {
	msg := e.Step + ": " + e.Err.Error() + " (folder=" + e.LocalFolder
	if e.RemoteURI != "" {
		msg += " remote=" + e.RemoteURI
	}
	return msg + ")"
}

func (e *StepError) Unwrap() error { return e.Err }

// Step wraps err (if non-nil) into a *StepError carrying step/context info.
// Returns nil if err is nil.
func Step(step string, localFolder, remoteURI string, err error) error {
	if err == nil {
		return nil
	}

	return &StepError{Err: err, Step: step, LocalFolder: localFolder, RemoteURI: remoteURI}
}
