package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Registration workflow errors
	ErrDuplicateEmail                = errors.New("email already registered")
	ErrInvalidSponsor                = errors.New("sponsor code does not match any member")
	ErrMissingActivationCode         = errors.New("activation code is required")
	ErrInvalidActivationCode         = errors.New("activation code not found")
	ErrActivationCodeUsed            = errors.New("activation code already used")
	ErrActivationCodeSponsorMismatch = errors.New("activation code not assigned to the sponsor")
	ErrMemberCodeTaken               = errors.New("member code already taken")

	// Login errors
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Infrastructure errors
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
