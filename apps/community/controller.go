package community

import (
	"fmt"
	"strings"

	"github.com/flowtalk-io/flowtalk-backend/apps/auth"
	"github.com/flowtalk-io/flowtalk-backend/apps/models"
	"github.com/flowtalk-io/flowtalk-backend/apps/redis"
	"github.com/flowtalk-io/flowtalk-backend/lib/response"
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/pagination"
)

type Controller struct{}

type createCommunityRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type createChannelRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// DiscoverItem is a community row in the public directory.
type DiscoverItem struct {
	models.Community
	MemberCount int64 `json:"member_count"`
	IsMember    bool  `json:"is_member"`
}

// ListCommunities returns the communities the caller belongs to, with their
// channels.
func (c Controller) ListCommunities(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	ids, err := models.GetUserCommunityIDs(user.UserID)
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	if len(ids) == 0 {
		return response.List([]models.Community{}, 0)
	}

	var communities []models.Community
	if err := db.
		Preload("Channels").
		Where("id IN ? AND id != ?", ids, models.DMCommunityID).
		Order("name").
		Find(&communities).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.List(communities, len(communities))
}

// Discover returns a paginated public directory of communities.
func (c Controller) Discover(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	query := db.Model(&models.Community{}).Where("id != ?", models.DMCommunityID)
	if search := req.Query("search").String(); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}

	var communities []models.Community
	p, err := pagination.New(query, req, &communities, pagination.Options{MaxSize: 100})
	if resp := response.HandlePaginationError(err, req, "community discover"); resp != nil {
		return resp
	}
	if p == nil {
		return response.List([]DiscoverItem{}, 0)
	}

	memberOf := map[string]bool{}
	if ids, err := models.GetUserCommunityIDs(user.UserID); err == nil {
		for _, id := range ids {
			memberOf[id] = true
		}
	}

	items := make([]DiscoverItem, 0, len(communities))
	for i := range communities {
		var count int64
		db.Model(&models.CommunityMember{}).Where("community_id = ?", communities[i].ID).Count(&count)
		items = append(items, DiscoverItem{
			Community:   communities[i],
			MemberCount: count,
			IsMember:    memberOf[communities[i].ID],
		})
	}

	return response.OKWithMeta(items, &response.Meta{
		Page:       p.CurrentPage,
		Limit:      p.Size,
		Total:      int64(p.Records),
		TotalPages: p.Pages,
	})
}

// CreateCommunity creates a community with a default "general" channel and
// makes the creator its first member.
func (c Controller) CreateCommunity(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	if ok, retryAfter := redis.Allow("community.create", req.IP()); !ok {
		rateErr := response.ErrRateLimited
		rateErr.Details = fmt.Sprintf("Retry after %d seconds", retryAfter)
		return response.Error(rateErr)
	}

	var params createCommunityRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return response.Error(response.NewError(response.ErrorCodeMissingRequired, "Community name is required", 400))
	}
	if len(params.Name) > 255 {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Community name is too long", 400))
	}

	community := models.Community{
		Name:        params.Name,
		Description: params.Description,
		CreatedBy:   user.UserID,
	}
	if err := db.Create(&community).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	member := models.CommunityMember{
		CommunityID: community.ID,
		UserID:      user.UserID,
	}
	if err := db.Create(&member).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}

	general := models.Channel{
		CommunityID: community.ID,
		Name:        "general",
		Description: "General discussion",
	}
	if err := db.Create(&general).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	community.Channels = []models.Channel{general}

	return response.Created(community)
}

// GetCommunity returns one community with channels; members only.
func (c Controller) GetCommunity(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").String()
	if !models.IsCommunityMember(user.UserID, id) {
		return response.Error(response.ErrCommunityNotFound)
	}

	var community models.Community
	err := db.Preload("Channels").Where("id = ?", id).First(&community).Error
	if resp := response.HandleDBError(err, req, "Community not found", "get community"); resp != nil {
		return resp
	}
	return response.OK(community)
}

// Join adds the caller to a community. Joining twice is a no-op.
func (c Controller) Join(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").String()
	if id == models.DMCommunityID {
		return response.Error(response.ErrCommunityNotFound)
	}

	var community models.Community
	err := db.Where("id = ?", id).First(&community).Error
	if resp := response.HandleDBError(err, req, "Community not found", "join community"); resp != nil {
		return resp
	}

	if models.IsCommunityMember(user.UserID, id) {
		return response.OKWithMessage(community, "Already a member")
	}

	member := models.CommunityMember{
		CommunityID: id,
		UserID:      user.UserID,
	}
	if err := db.Create(&member).Error; err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.OKWithMessage(community, "Joined community")
}

// Leave removes the caller from a community.
func (c Controller) Leave(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").String()
	res := db.Where("community_id = ? AND user_id = ?", id, user.UserID).Delete(&models.CommunityMember{})
	if res.Error != nil {
		return response.Error(response.ErrDatabaseError)
	}
	if res.RowsAffected == 0 {
		return response.Error(response.ErrCommunityNotFound)
	}
	return response.Message("Left community")
}

// ListMembers returns a community's members with their languages; the
// language mix shows what a message here will be translated into.
func (c Controller) ListMembers(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").String()
	if !models.IsCommunityMember(user.UserID, id) {
		return response.Error(response.ErrCommunityNotFound)
	}

	var members []auth.PublicProfile
	err := db.Table("community_members").
		Select("users.id, users.username, users.display_name, users.avatar, users.primary_language, users.status").
		Joins("JOIN users ON users.id = community_members.user_id").
		Where("community_members.community_id = ?", id).
		Order("users.username").
		Scan(&members).Error
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.List(members, len(members))
}

// CreateChannel adds a channel to a community; members only. Names are
// slugified and unique within the community.
func (c Controller) CreateChannel(req *evo.Request) interface{} {
	user, ok := req.User().(*auth.User)
	if !ok || user.Anonymous() {
		return response.Error(response.ErrUnauthorized)
	}

	id := req.Param("id").String()
	if id == models.DMCommunityID || !models.IsCommunityMember(user.UserID, id) {
		return response.Error(response.ErrCommunityNotFound)
	}

	if ok, retryAfter := redis.Allow("community.create", req.IP()); !ok {
		rateErr := response.ErrRateLimited
		rateErr.Details = fmt.Sprintf("Retry after %d seconds", retryAfter)
		return response.Error(rateErr)
	}

	var params createChannelRequest
	if err := req.BodyParser(&params); err != nil {
		return response.Error(response.ErrInvalidInput)
	}
	slug := models.SlugifyChannelName(params.Name)
	if slug == "" {
		return response.Error(response.NewError(response.ErrorCodeInvalidInput, "Channel name must contain letters or digits", 400))
	}

	channel := models.Channel{
		CommunityID: id,
		Name:        slug,
		Description: params.Description,
	}
	if err := db.Create(&channel).Error; err != nil {
		return response.Error(response.NewError(response.ErrorCodeConflict, "A channel with this name already exists", 409))
	}
	return response.Created(channel)
}
