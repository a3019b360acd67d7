package model

import (
	"time"

	"mlm-membership-platform/internal/domain"
)

type ProfileStatus string

const (
	ProfilePending  ProfileStatus = "pending"
	ProfileApproved ProfileStatus = "approved"
	ProfileRejected ProfileStatus = "rejected"
)

// MemberProfile holds a member's KYC submission: address and bank details
// plus references to the uploaded identity documents. Document fields store
// opaque references into the document store, never raw image bytes.
type MemberProfile struct {
	MemberID          int64
	AddressLine1      string
	City              string
	State             string
	Pincode           string
	Country           string
	BankName          string
	AccountHolderName string
	AccountNumber     string
	IFSCCode          string
	AadhaarFrontRef   string
	AadhaarBackRef    string
	BankPassbookRef   string
	Status            ProfileStatus
	CreatedAt         time.Time
}

func NewMemberProfile(memberID int64, addressLine1, city, state, pincode, country, bankName, accountHolder, accountNumber, ifsc string) (*MemberProfile, error) {
	if memberID <= 0 || addressLine1 == "" || bankName == "" || accountNumber == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &MemberProfile{
		MemberID:          memberID,
		AddressLine1:      addressLine1,
		City:              city,
		State:             state,
		Pincode:           pincode,
		Country:           country,
		BankName:          bankName,
		AccountHolderName: accountHolder,
		AccountNumber:     accountNumber,
		IFSCCode:          ifsc,
		Status:            ProfilePending,
		CreatedAt:         time.Now(),
	}, nil
}

// ValidProfileStatus reports whether s is a status an admin may set.
func ValidProfileStatus(s ProfileStatus) bool {
	return s == ProfileApproved || s == ProfileRejected
}

// PendingProfile is a review-queue row with the member identity and the
// decoded document payloads attached.
type PendingProfile struct {
	MemberProfile
	MemberName   string
	MemberCode   string
	AadhaarFront []byte
	AadhaarBack  []byte
	BankPassbook []byte
}

// SponsorEntry is one level of a member's upline chain.
type SponsorEntry struct {
	MemberID int64
	Code     string
	Name     string
	Level    int
}
