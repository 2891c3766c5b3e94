package xr

import "strconv"

// Result is a runtime return code. Negative values are failures.
type Result int32

const (
	Success                              Result = 0
	TimeoutExpired                       Result = 1
	SessionLossPending                   Result = 3
	EventUnavailable                     Result = 4
	SpaceBoundsUnavailable               Result = 7
	SessionNotFocused                    Result = 8
	FrameDiscarded                       Result = 9
	ErrorValidationFailure               Result = -1
	ErrorRuntimeFailure                  Result = -2
	ErrorOutOfMemory                     Result = -3
	ErrorAPIVersionUnsupported           Result = -4
	ErrorInitializationFailed            Result = -6
	ErrorFunctionUnsupported             Result = -7
	ErrorFeatureUnsupported              Result = -8
	ErrorExtensionNotPresent             Result = -9
	ErrorLimitReached                    Result = -10
	ErrorSizeInsufficient                Result = -11
	ErrorHandleInvalid                   Result = -12
	ErrorInstanceLost                    Result = -13
	ErrorSessionRunning                  Result = -14
	ErrorSessionNotRunning               Result = -16
	ErrorSessionLost                     Result = -17
	ErrorSystemInvalid                   Result = -18
	ErrorPathInvalid                     Result = -19
	ErrorPathCountExceeded               Result = -20
	ErrorPathFormatInvalid               Result = -21
	ErrorPathUnsupported                 Result = -22
	ErrorLayerInvalid                    Result = -23
	ErrorLayerLimitExceeded              Result = -24
	ErrorSwapchainRectInvalid            Result = -25
	ErrorSwapchainFormatUnsupported      Result = -26
	ErrorActionTypeMismatch              Result = -27
	ErrorSessionNotReady                 Result = -28
	ErrorSessionNotStopping              Result = -29
	ErrorTimeInvalid                     Result = -30
	ErrorReferenceSpaceUnsupported       Result = -31
	ErrorFileAccessError                 Result = -32
	ErrorFileContentsInvalid             Result = -33
	ErrorFormFactorUnsupported           Result = -34
	ErrorFormFactorUnavailable           Result = -35
	ErrorAPILayerNotPresent              Result = -36
	ErrorCallOrderInvalid                Result = -37
	ErrorGraphicsDeviceInvalid           Result = -38
	ErrorPoseInvalid                     Result = -39
	ErrorIndexOutOfRange                 Result = -40
	ErrorViewConfigurationUnsupported    Result = -41
	ErrorEnvironmentBlendModeUnsupported Result = -42
	ErrorNameDuplicated                  Result = -44
	ErrorNameInvalid                     Result = -45
	ErrorActionsetNotAttached            Result = -46
	ErrorActionsetsAlreadyAttached       Result = -47
	ErrorLocalizedNameDuplicated         Result = -48
	ErrorLocalizedNameInvalid            Result = -49
)

var resultNames = map[Result]string{
	Success:                              "XR_SUCCESS",
	TimeoutExpired:                       "XR_TIMEOUT_EXPIRED",
	SessionLossPending:                   "XR_SESSION_LOSS_PENDING",
	EventUnavailable:                     "XR_EVENT_UNAVAILABLE",
	SpaceBoundsUnavailable:               "XR_SPACE_BOUNDS_UNAVAILABLE",
	SessionNotFocused:                    "XR_SESSION_NOT_FOCUSED",
	FrameDiscarded:                       "XR_FRAME_DISCARDED",
	ErrorValidationFailure:               "XR_ERROR_VALIDATION_FAILURE",
	ErrorRuntimeFailure:                  "XR_ERROR_RUNTIME_FAILURE",
	ErrorOutOfMemory:                     "XR_ERROR_OUT_OF_MEMORY",
	ErrorAPIVersionUnsupported:           "XR_ERROR_API_VERSION_UNSUPPORTED",
	ErrorInitializationFailed:            "XR_ERROR_INITIALIZATION_FAILED",
	ErrorFunctionUnsupported:             "XR_ERROR_FUNCTION_UNSUPPORTED",
	ErrorFeatureUnsupported:              "XR_ERROR_FEATURE_UNSUPPORTED",
	ErrorExtensionNotPresent:             "XR_ERROR_EXTENSION_NOT_PRESENT",
	ErrorLimitReached:                    "XR_ERROR_LIMIT_REACHED",
	ErrorSizeInsufficient:                "XR_ERROR_SIZE_INSUFFICIENT",
	ErrorHandleInvalid:                   "XR_ERROR_HANDLE_INVALID",
	ErrorInstanceLost:                    "XR_ERROR_INSTANCE_LOST",
	ErrorSessionRunning:                  "XR_ERROR_SESSION_RUNNING",
	ErrorSessionNotRunning:               "XR_ERROR_SESSION_NOT_RUNNING",
	ErrorSessionLost:                     "XR_ERROR_SESSION_LOST",
	ErrorSystemInvalid:                   "XR_ERROR_SYSTEM_INVALID",
	ErrorPathInvalid:                     "XR_ERROR_PATH_INVALID",
	ErrorPathCountExceeded:               "XR_ERROR_PATH_COUNT_EXCEEDED",
	ErrorPathFormatInvalid:               "XR_ERROR_PATH_FORMAT_INVALID",
	ErrorPathUnsupported:                 "XR_ERROR_PATH_UNSUPPORTED",
	ErrorLayerInvalid:                    "XR_ERROR_LAYER_INVALID",
	ErrorLayerLimitExceeded:              "XR_ERROR_LAYER_LIMIT_EXCEEDED",
	ErrorSwapchainRectInvalid:            "XR_ERROR_SWAPCHAIN_RECT_INVALID",
	ErrorSwapchainFormatUnsupported:      "XR_ERROR_SWAPCHAIN_FORMAT_UNSUPPORTED",
	ErrorActionTypeMismatch:              "XR_ERROR_ACTION_TYPE_MISMATCH",
	ErrorSessionNotReady:                 "XR_ERROR_SESSION_NOT_READY",
	ErrorSessionNotStopping:              "XR_ERROR_SESSION_NOT_STOPPING",
	ErrorTimeInvalid:                     "XR_ERROR_TIME_INVALID",
	ErrorReferenceSpaceUnsupported:       "XR_ERROR_REFERENCE_SPACE_UNSUPPORTED",
	ErrorFileAccessError:                 "XR_ERROR_FILE_ACCESS_ERROR",
	ErrorFileContentsInvalid:             "XR_ERROR_FILE_CONTENTS_INVALID",
	ErrorFormFactorUnsupported:           "XR_ERROR_FORM_FACTOR_UNSUPPORTED",
	ErrorFormFactorUnavailable:           "XR_ERROR_FORM_FACTOR_UNAVAILABLE",
	ErrorAPILayerNotPresent:              "XR_ERROR_API_LAYER_NOT_PRESENT",
	ErrorCallOrderInvalid:                "XR_ERROR_CALL_ORDER_INVALID",
	ErrorGraphicsDeviceInvalid:           "XR_ERROR_GRAPHICS_DEVICE_INVALID",
	ErrorPoseInvalid:                     "XR_ERROR_POSE_INVALID",
	ErrorIndexOutOfRange:                 "XR_ERROR_INDEX_OUT_OF_RANGE",
	ErrorViewConfigurationUnsupported:    "XR_ERROR_VIEW_CONFIGURATION_TYPE_UNSUPPORTED",
	ErrorEnvironmentBlendModeUnsupported: "XR_ERROR_ENVIRONMENT_BLEND_MODE_UNSUPPORTED",
	ErrorNameDuplicated:                  "XR_ERROR_NAME_DUPLICATED",
	ErrorNameInvalid:                     "XR_ERROR_NAME_INVALID",
	ErrorActionsetNotAttached:            "XR_ERROR_ACTIONSET_NOT_ATTACHED",
	ErrorActionsetsAlreadyAttached:       "XR_ERROR_ACTIONSETS_ALREADY_ATTACHED",
	ErrorLocalizedNameDuplicated:         "XR_ERROR_LOCALIZED_NAME_DUPLICATED",
	ErrorLocalizedNameInvalid:            "XR_ERROR_LOCALIZED_NAME_INVALID",
}

// Succeeded reports whether r is a success code (including qualified successes).
func (r Result) Succeeded() bool { return r >= 0 }

// Failed reports whether r is an error code.
func (r Result) Failed() bool { return r < 0 }

// Unqualified reports whether r is exactly Success.
func (r Result) Unqualified() bool { return r == Success }

// String returns the enum name, or "Error code N" for unknown codes.
func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return "Error code " + strconv.Itoa(int(r))
}
