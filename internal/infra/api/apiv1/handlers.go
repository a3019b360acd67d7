package apiv1

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"mlm-membership-platform/internal/domain"
	"mlm-membership-platform/internal/domain/model"
	"mlm-membership-platform/internal/infra/logging"
	"mlm-membership-platform/internal/infra/metrics"
	"mlm-membership-platform/internal/usecase"

	"github.com/go-chi/chi/v5"
)

const (
	maxBodyBytes   = 1 << 20  // JSON request bodies
	maxUploadBytes = 16 << 20 // multipart KYC submissions
)

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Message: msg})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	return dec.Decode(dst)
}

func urlID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// respondError maps domain sentinels onto HTTP statuses. Unknown errors are
// logged and returned as an opaque 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, domain.ErrInvalidSponsor):
		writeError(w, http.StatusBadRequest, "sponsor not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "email already registered")
	case errors.Is(err, domain.ErrMissingActivationCode):
		writeError(w, http.StatusBadRequest, "activation code required")
	case errors.Is(err, domain.ErrInvalidActivationCode):
		writeError(w, http.StatusBadRequest, "activation code not recognized")
	case errors.Is(err, domain.ErrActivationCodeUsed):
		writeError(w, http.StatusConflict, "activation code already used")
	case errors.Is(err, domain.ErrActivationCodeSponsorMismatch):
		writeError(w, http.StatusBadRequest, "activation code does not belong to the sponsor")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid member code or password")
	default:
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// canAccessMember allows a member to read their own records and admins to
// read anyone's.
func canAccessMember(claims *SessionClaims, memberID int64) bool {
	if claims == nil {
		return false
	}
	return claims.Role == model.RoleAdmin || claims.MemberID == memberID
}

// --- auth ---

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Password       string `json:"password"`
	SponsorCode    string `json:"sponsor_code"`
	ActivationCode string `json:"activation_code"`
	PlanID         int64  `json:"plan_id"`
}

type registerResponse struct {
	MemberID int64  `json:"member_id"`
	Role     string `json:"role"`
	Code     string `json:"code"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	res, err := s.registration.Register(r.Context(), usecase.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Password:       req.Password,
		SponsorCode:    req.SponsorCode,
		ActivationCode: req.ActivationCode,
		PlanID:         req.PlanID,
	})
	if err != nil {
		metrics.IncRegistration(registrationOutcome(err))
		s.respondError(w, r, err)
		return
	}
	metrics.IncRegistration("ok")
	if res.CodeRedeemed {
		metrics.IncEPinsRedeemed()
	}
	writeJSON(w, http.StatusCreated, registerResponse{MemberID: res.MemberID, Role: res.Role, Code: res.Code})
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidSponsor):
		return "invalid_sponsor"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrMissingActivationCode):
		return "missing_epin"
	case errors.Is(err, domain.ErrInvalidActivationCode):
		return "invalid_epin"
	case errors.Is(err, domain.ErrActivationCodeUsed):
		return "epin_used"
	case errors.Is(err, domain.ErrActivationCodeSponsorMismatch):
		return "epin_sponsor_mismatch"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_input"
	default:
		return "error"
	}
}

type loginRequest struct {
	MemberCode string `json:"member_code"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Member usecase.MemberSummary `json:"member"`
	Token  string                `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	res, err := s.auth.Login(r.Context(), req.MemberCode, req.Password)
	if err != nil {
		// An unknown member code and a wrong password must be
		// indistinguishable to the caller.
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid member code or password")
			return
		}
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Member: res.Member, Token: res.Token})
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := SessionFrom(r.Context())
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.auth.ChangePassword(r.Context(), claims.MemberID, req.OldPassword, req.NewPassword); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// --- epins ---

type issueEPinsRequest struct {
	PlanID     int64 `json:"plan_id"`
	Count      int   `json:"count"`
	AssignedTo int64 `json:"assigned_to"`
}

func (s *Server) handleIssueEPins(w http.ResponseWriter, r *http.Request) {
	var req issueEPinsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	codes, err := s.epins.Issue(r.Context(), req.PlanID, req.Count, req.AssignedTo)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	metrics.AddEPinsIssued(len(codes))
	writeJSON(w, http.StatusCreated, map[string][]string{"codes": codes})
}

type reshareEPinsRequest struct {
	Codes        []string `json:"codes"`
	ReceiverCode string   `json:"receiver_code"`
}

func (s *Server) handleReshareEPins(w http.ResponseWriter, r *http.Request) {
	var req reshareEPinsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.epins.Reshare(r.Context(), req.Codes, req.ReceiverCode); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "codes reassigned"})
}

type epinHistoryItem struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Status     string `json:"status"`
	PlanID     int64  `json:"plan_id"`
	AssignedTo int64  `json:"assigned_to"`
	OwnerCode  string `json:"owner_code"`
	UsedBy     *int64 `json:"used_by,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func (s *Server) handleEPinHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.epins.History(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items := make([]epinHistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, epinHistoryItem{
			ID:         e.ID,
			Code:       e.Code,
			Status:     string(e.Status),
			PlanID:     e.PlanID,
			AssignedTo: e.AssignedTo,
			OwnerCode:  e.OwnerCode,
			UsedBy:     e.UsedBy,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type assignedEPinItem struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Status    string `json:"status"`
	PlanID    int64  `json:"plan_id"`
	PlanName  string `json:"plan_name"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleAssignedEPins(w http.ResponseWriter, r *http.Request) {
	claims := SessionFrom(r.Context())
	pins, err := s.epins.Assigned(r.Context(), claims.MemberID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items := make([]assignedEPinItem, 0, len(pins))
	for _, p := range pins {
		items = append(items, assignedEPinItem{
			ID:        p.ID,
			Code:      p.Code,
			Status:    string(p.Status),
			PlanID:    p.PlanID,
			PlanName:  p.PlanName,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// --- rewards ---

type addRewardRequest struct {
	PlanID      int64  `json:"plan_id"`
	NoOfDirects int    `json:"no_of_directs"`
	Title       string `json:"title"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

func (s *Server) handleAddReward(w http.ResponseWriter, r *http.Request) {
	var req addRewardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	err := s.rewards.AddDefinition(r.Context(), req.PlanID, req.NoOfDirects, req.Title, req.Image, req.Description)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "reward created"})
}

type rewardItem struct {
	ID          int64  `json:"id"`
	PlanName    string `json:"plan_name"`
	NoOfDirects int    `json:"no_of_directs"`
	Title       string `json:"title"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleListRewards(w http.ResponseWriter, r *http.Request) {
	defs, err := s.rewards.Definitions(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items := make([]rewardItem, 0, len(defs))
	for _, d := range defs {
		items = append(items, rewardItem{
			ID:          d.ID,
			PlanName:    d.PlanName,
			NoOfDirects: d.NoOfDirects,
			Title:       d.Title,
			Image:       d.Image,
			Description: d.Description,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type rewardProgressItem struct {
	RewardID        int64  `json:"reward_id"`
	Title           string `json:"title"`
	PlanName        string `json:"plan_name"`
	RequiredDirects int    `json:"required_directs"`
	AchievedDirects int    `json:"achieved_directs"`
	Status          string `json:"status"`
	Paid            bool   `json:"paid"`
}

func (s *Server) handleMemberRewards(w http.ResponseWriter, r *http.Request) {
	memberID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	if !canAccessMember(SessionFrom(r.Context()), memberID) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	progress, err := s.rewards.MemberRewards(r.Context(), memberID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items := make([]rewardProgressItem, 0, len(progress))
	for _, p := range progress {
		items = append(items, rewardProgressItem{
			RewardID:        p.RewardID,
			Title:           p.Title,
			PlanName:        p.PlanName,
			RequiredDirects: p.RequiredDirects,
			AchievedDirects: p.AchievedDirects,
			Status:          p.Status,
			Paid:            p.Paid,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type memberRewardItem struct {
	ID         int64  `json:"id"`
	MemberID   int64  `json:"member_id"`
	MemberCode string `json:"member_code"`
	MemberName string `json:"member_name"`
	RewardID   int64  `json:"reward_id"`
	Status     string `json:"status"`
	Paid       bool   `json:"paid"`
}

func memberRewardItems(entries []*model.MemberRewardEntry) []memberRewardItem {
	items := make([]memberRewardItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, memberRewardItem{
			ID:         e.ID,
			MemberID:   e.MemberID,
			MemberCode: e.MemberCode,
			MemberName: e.MemberName,
			RewardID:   e.RewardID,
			Status:     e.Status,
			Paid:       e.Paid,
		})
	}
	return items
}

func (s *Server) handleEligibleRewards(w http.ResponseWriter, r *http.Request) {
	entries, err := s.rewards.Eligible(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberRewardItems(entries))
}

func (s *Server) handlePayReward(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward id")
		return
	}
	if err := s.rewards.MarkPaid(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "reward paid"})
}

func (s *Server) handlePaidRewards(w http.ResponseWriter, r *http.Request) {
	entries, err := s.rewards.PaidHistory(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberRewardItems(entries))
}

func (s *Server) handlePaidStatus(w http.ResponseWriter, r *http.Request) {
	memberID, err := urlID(r, "memberID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	rewardID, err := urlID(r, "rewardID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reward id")
		return
	}
	paid, err := s.rewards.PaidStatus(r.Context(), memberID, rewardID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paid": paid})
}

// --- profiles ---

func (s *Server) handleSubmitProfile(w http.ResponseWriter, r *http.Request) {
	claims := SessionFrom(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart form")
		return
	}
	in := usecase.SubmitProfileInput{
		MemberID:          claims.MemberID,
		AddressLine1:      r.FormValue("address_line1"),
		City:              r.FormValue("city"),
		State:             r.FormValue("state"),
		Pincode:           r.FormValue("pincode"),
		Country:           r.FormValue("country"),
		BankName:          r.FormValue("bank_name"),
		AccountHolderName: r.FormValue("account_holder_name"),
		AccountNumber:     r.FormValue("account_number"),
		IFSCCode:          r.FormValue("ifsc_code"),
	}
	var err error
	if in.AadhaarFront, err = formFileBytes(r, "aadhaar_front"); err != nil {
		writeError(w, http.StatusBadRequest, "unreadable aadhaar_front upload")
		return
	}
	if in.AadhaarBack, err = formFileBytes(r, "aadhaar_back"); err != nil {
		writeError(w, http.StatusBadRequest, "unreadable aadhaar_back upload")
		return
	}
	if in.BankPassbook, err = formFileBytes(r, "bank_passbook"); err != nil {
		writeError(w, http.StatusBadRequest, "unreadable bank_passbook upload")
		return
	}
	if err := s.profiles.Submit(r.Context(), in); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "profile submitted"})
}

func formFileBytes(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)
	return io.ReadAll(io.LimitReader(file, maxUploadBytes))
}

type pendingProfileItem struct {
	profileItem
	MemberName   string `json:"member_name"`
	MemberCode   string `json:"member_code"`
	AadhaarFront []byte `json:"aadhaar_front,omitempty"`
	AadhaarBack  []byte `json:"aadhaar_back,omitempty"`
	BankPassbook []byte `json:"bank_passbook,omitempty"`
}

type profileItem struct {
	MemberID          int64  `json:"member_id"`
	AddressLine1      string `json:"address_line1"`
	City              string `json:"city"`
	State             string `json:"state"`
	Pincode           string `json:"pincode"`
	Country           string `json:"country"`
	BankName          string `json:"bank_name"`
	AccountHolderName string `json:"account_holder_name"`
	AccountNumber     string `json:"account_number"`
	IFSCCode          string `json:"ifsc_code"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
}

func toProfileItem(p *model.MemberProfile) profileItem {
	return profileItem{
		MemberID:          p.MemberID,
		AddressLine1:      p.AddressLine1,
		City:              p.City,
		State:             p.State,
		Pincode:           p.Pincode,
		Country:           p.Country,
		BankName:          p.BankName,
		AccountHolderName: p.AccountHolderName,
		AccountNumber:     p.AccountNumber,
		IFSCCode:          p.IFSCCode,
		Status:            string(p.Status),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handlePendingProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.profiles.Pending(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items := make([]pendingProfileItem, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, pendingProfileItem{
			profileItem:  toProfileItem(&p.MemberProfile),
			MemberName:   p.MemberName,
			MemberCode:   p.MemberCode,
			AadhaarFront: p.AadhaarFront,
			AadhaarBack:  p.AadhaarBack,
			BankPassbook: p.BankPassbook,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type profileStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleProfileStatusUpdate(w http.ResponseWriter, r *http.Request) {
	memberID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	var req profileStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.profiles.UpdateStatus(r.Context(), memberID, model.ProfileStatus(req.Status)); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "profile status updated"})
}

func (s *Server) handleProfileStatus(w http.ResponseWriter, r *http.Request) {
	memberID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	if !canAccessMember(SessionFrom(r.Context()), memberID) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	status, err := s.profiles.Status(r.Context(), memberID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (s *Server) handleProfileDetails(w http.ResponseWriter, r *http.Request) {
	memberID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	if !canAccessMember(SessionFrom(r.Context()), memberID) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	profile, err := s.profiles.Details(r.Context(), memberID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileItem(profile))
}

// --- tree, sponsors, plans ---

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	memberID, err := urlID(r, "memberID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	planID, err := urlID(r, "planID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid plan id")
		return
	}
	xml, err := s.tree.TreeXML(r.Context(), memberID, planID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, xml)
}

type sponsorItem struct {
	MemberID int64  `json:"member_id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Level    int    `json:"level"`
}

func (s *Server) handleSponsors(w http.ResponseWriter, r *http.Request) {
	memberID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	entries, err := s.tree.Sponsors(r.Context(), memberID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items := make([]sponsorItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, sponsorItem{MemberID: e.MemberID, Code: e.Code, Name: e.Name, Level: e.Level})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDirects(w http.ResponseWriter, r *http.Request) {
	sponsorID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sponsor id")
		return
	}
	total, err := s.tree.Directs(r.Context(), sponsorID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total_directs": total})
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	memberID, err := urlID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid member id")
		return
	}
	total, err := s.tree.TotalIncome(r.Context(), memberID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_income": total})
}

type planUpgradeRequest struct {
	PlanID   int64  `json:"plan_id"`
	EPinCode string `json:"epin_code"`
}

func (s *Server) handlePlanUpgrade(w http.ResponseWriter, r *http.Request) {
	claims := SessionFrom(r.Context())
	var req planUpgradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.registration.UpgradePlan(r.Context(), claims.MemberID, req.PlanID, req.EPinCode); err != nil {
		s.respondError(w, r, err)
		return
	}
	metrics.IncEPinsRedeemed()
	writeJSON(w, http.StatusOK, map[string]string{"message": "plan activated"})
}

type planItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items := make([]planItem, 0, len(plans))
	for _, p := range plans {
		items = append(items, planItem{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	writeJSON(w, http.StatusOK, items)
}

type createPlanRequest struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	plan, err := s.plans.Create(r.Context(), req.Name, req.Price)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, planItem{ID: plan.ID, Name: plan.Name, Price: plan.Price})
}
