package errors

import "fmt"

// WrapParseError wraps an error with a "failed to parse" message
func WrapParseError(path string, cause error) *BaseError {
	return Wrap(SyntaxErrorCode, fmt.Sprintf("failed to parse %s", path), cause).
		WithLocation(SourceLocation{File: path})
}

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s '%s'", operation, path)
	return Wrap(FileSystemErrorCode, message, cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(configType, operation string, cause error) *BaseError {
	message := fmt.Sprintf("failed to %s configuration '%s'", operation, configType)
	return Wrap(ConfigurationErrorCode, message, cause).
		WithContext("config_type", configType).
		WithContext("operation", operation)
}

// ConfigurationError creates a configuration error
func ConfigurationError(configType, message string) *BaseError {
	fullMessage := fmt.Sprintf("configuration error in '%s': %s", configType, message)
	return New(ConfigurationErrorCode, fullMessage).
		WithContext("config_type", configType)
}

// ResolutionError reports a definition that does not resolve to a class
func ResolutionError(kind, name, reason string) *BaseError {
	return Newf(ResolutionErrorCode, "skipping %s '%s': %s", kind, name, reason).
		WithContext("kind", kind).
		WithContext("name", name)
}

// ReflectionError reports a class that could not be reflected
func ReflectionError(class, reason string) *BaseError {
	return Newf(ReflectionErrorCode, "cannot reflect class '%s': %s", class, reason).
		WithContext("class", class)
}

// WrapReflectionError wraps an error met while reflecting a class
func WrapReflectionError(class string, cause error) *BaseError {
	return Wrap(ReflectionErrorCode, fmt.Sprintf("cannot reflect class '%s'", class), cause).
		WithContext("class", class)
}
