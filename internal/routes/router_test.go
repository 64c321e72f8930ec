package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"portal-united/directory/internal/api"
	"portal-united/directory/internal/constants"
	"portal-united/directory/internal/metrics"
	"portal-united/directory/internal/middleware"
	"portal-united/directory/internal/models/dtos/responses"
	"portal-united/directory/internal/models/entities"
	models "portal-united/directory/internal/models/gorm"
	"portal-united/directory/internal/services"
	"portal-united/directory/internal/testutil"
)

const testPassword = "correct-horse"

type site struct {
	t   *testing.T
	db  *gorm.DB
	srv *httptest.Server
}

func newSite(t *testing.T) *site {
	t.Helper()

	db := testutil.OpenDB(t)
	deps, err := api.InitDependencies(db, testutil.SQLX(t, db), nil,
		metrics.NewMetricsRegistry(prometheus.NewRegistry()),
		api.Options{
			SessionSecret: []byte("test-secret"),
			SessionTTL:    time.Hour,
			InviteTTL:     time.Hour,
		})
	require.NoError(t, err)

	handler, err := RegisterRoutes(deps, Options{}, time.Now())
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &site{t: t, db: db, srv: srv}
}

// user inserts an account that can log in with testPassword.
func (s *site) user(username string, superuser bool) *models.User {
	s.t.Helper()
	u := testutil.CreateUser(s.t, s.db, username)
	hash, err := services.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Model(u).Updates(map[string]interface{}{
		"password_hash": hash,
		"is_superuser":  superuser,
		"is_staff":      superuser,
	}).Error)
	return u
}

// client does not follow redirects so tests can assert on them.
func (s *site) client() *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(s.t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *site) login(username string) *http.Client {
	s.t.Helper()
	c := s.client()
	resp := s.post(c, "/accounts/login/", url.Values{"username": {username}, "password": {testPassword}})
	require.Equal(s.t, http.StatusFound, resp.StatusCode)
	require.Equal(s.t, "/", resp.Header.Get("Location"))
	return c
}

func (s *site) get(c *http.Client, path string) *http.Response {
	s.t.Helper()
	resp, err := c.Get(s.srv.URL + path)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// post submits form the way a rendered page would, csrf field included.
func (s *site) post(c *http.Client, path string, form url.Values) *http.Response {
	s.t.Helper()
	values := url.Values{}
	for k, v := range form {
		values[k] = v
	}
	values.Set(middleware.CSRFFieldName, s.csrfToken(c))
	return s.postRaw(c, path, values)
}

func (s *site) postRaw(c *http.Client, path string, form url.Values) *http.Response {
	s.t.Helper()
	resp, err := c.PostForm(s.srv.URL+path, form)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// csrfToken returns the client's token cookie, visiting the home page first when it has none.
func (s *site) csrfToken(c *http.Client) string {
	s.t.Helper()
	u, err := url.Parse(s.srv.URL)
	require.NoError(s.t, err)
	find := func() string {
		for _, cookie := range c.Jar.Cookies(u) {
			if cookie.Name == middleware.CSRFCookieName {
				return cookie.Value
			}
		}
		return ""
	}
	if token := find(); token != "" {
		return token
	}
	s.get(c, "/")
	token := find()
	require.NotEmpty(s.t, token)
	return token
}

func communityPath(c *models.CommunityProfile, suffix string) string {
	return "/communities/" + strconv.FormatUint(uint64(c.ID), 10) + "/" + suffix
}

func memberPath(c *models.CommunityProfile, m *models.Membership, action string) string {
	return communityPath(c, "member/"+strconv.FormatUint(uint64(m.ID), 10)+"/"+action+"/")
}

func TestHealthCheck(t *testing.T) {
	s := newSite(t)

	resp := s.get(s.client(), "/healthCheck")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body responses.APIResponse[entities.HealthCheckResponse]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "success", body.Status)
	require.NotNil(t, body.Data)
	assert.Equal(t, "ok", body.Data.Status)
	assert.Equal(t, "ok", body.Data.Services["postgres"].Status)
	assert.NotContains(t, body.Data.Services, "redis")
}

func TestPublicPages(t *testing.T) {
	s := newSite(t)
	owner := s.user("alice", false)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", owner)
	c := s.client()

	tests := []struct {
		path string
		want int
	}{
		{"/", http.StatusOK},
		{"/communities/", http.StatusOK},
		{"/communities/?city=lis&page=2", http.StatusOK},
		{communityPath(community, ""), http.StatusOK},
		{"/communities/9999/", http.StatusNotFound},
		{"/communities/abc/", http.StatusNotFound},
		{"/no-such-page/", http.StatusNotFound},
		{"/accounts/login/", http.StatusOK},
		{"/accounts/signup/", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := s.get(c, tt.path)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestLoginRequiredRedirects(t *testing.T) {
	s := newSite(t)
	c := s.client()

	resp := s.get(c, "/communities/create/")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/login/?next=%2Fcommunities%2Fcreate%2F", resp.Header.Get("Location"))

	resp = s.get(c, "/profile/")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/accounts/login/"))
}

func TestSignupLogsIn(t *testing.T) {
	s := newSite(t)
	c := s.client()

	resp := s.post(c, "/accounts/signup/", url.Values{
		"username":   {"dora"},
		"email":      {"dora@example.com"},
		"first_name": {"Dora"},
		"password1":  {"long-enough-pw"},
		"password2":  {"long-enough-pw"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	var profile models.PersonProfile
	require.NoError(t, s.db.Joins("JOIN users ON users.id = person_profiles.user_id").
		Where("users.username = ?", "dora").First(&profile).Error)
	assert.Equal(t, "Dora", profile.FirstName)

	resp = s.get(c, "/profile/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignupRejectsMismatchedPasswords(t *testing.T) {
	s := newSite(t)

	resp := s.post(s.client(), "/accounts/signup/", url.Values{
		"username":   {"eve"},
		"email":      {"eve@example.com"},
		"first_name": {"Eve"},
		"password1":  {"long-enough-pw"},
		"password2":  {"different-pw"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, s.db.Model(&models.User{}).Where("username = ?", "eve").Count(&count).Error)
	assert.Zero(t, count)
}

func TestLoginWrongPassword(t *testing.T) {
	s := newSite(t)
	s.user("alice", false)

	resp := s.post(s.client(), "/accounts/login/", url.Values{"username": {"alice"}, "password": {"nope-nope"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogout(t *testing.T) {
	s := newSite(t)
	s.user("alice", false)
	c := s.login("alice")

	require.Equal(t, http.StatusOK, s.get(c, "/profile/").StatusCode)

	resp := s.post(c, "/accounts/logout/", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	assert.Equal(t, http.StatusFound, s.get(c, "/profile/").StatusCode)
}

func TestCreateCommunityMakesCreatorOwner(t *testing.T) {
	s := newSite(t)
	alice := s.user("alice", false)
	c := s.login("alice")

	resp := s.post(c, "/communities/create/", url.Values{
		"name":         {"St. Mark Parish"},
		"description":  {"A parish in the old town"},
		"city":         {"Porto"},
		"denomination": {"catholic"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var community models.CommunityProfile
	require.NoError(t, s.db.Where("name = ?", "St. Mark Parish").First(&community).Error)
	assert.Equal(t, communityPath(&community, ""), resp.Header.Get("Location"))
	assert.Equal(t, "st-mark-parish", community.Slug)

	m := testutil.Membership(t, s.db, alice.ID, community.ID)
	require.NotNil(t, m)
	assert.Equal(t, constants.RoleOwner, m.Role)

	var count int64
	require.NoError(t, s.db.Model(&models.Membership{}).Where("community_id = ?", community.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateCommunityValidation(t *testing.T) {
	s := newSite(t)
	s.user("alice", false)
	c := s.login("alice")

	resp := s.post(c, "/communities/create/", url.Values{
		"name":         {"No City"},
		"description":  {"Missing the city"},
		"denomination": {"other"},
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	require.NoError(t, s.db.Model(&models.CommunityProfile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestJoinAndLeave(t *testing.T) {
	s := newSite(t)
	alice := s.user("alice", false)
	bob := s.user("bob", false)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", alice)

	bobClient := s.login("bob")

	resp := s.post(bobClient, communityPath(community, "join/"), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, communityPath(community, ""), resp.Header.Get("Location"))

	m := testutil.Membership(t, s.db, bob.ID, community.ID)
	require.NotNil(t, m)
	assert.Equal(t, constants.RoleMember, m.Role)

	// joining twice keeps a single row
	s.post(bobClient, communityPath(community, "join/"), nil)
	var count int64
	require.NoError(t, s.db.Model(&models.Membership{}).
		Where("person_id = ? AND community_id = ?", bob.ID, community.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	resp = s.post(bobClient, communityPath(community, "leave/"), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Nil(t, testutil.Membership(t, s.db, bob.ID, community.ID))

	aliceClient := s.login("alice")
	resp = s.post(aliceClient, communityPath(community, "leave/"), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	owner := testutil.Membership(t, s.db, alice.ID, community.ID)
	require.NotNil(t, owner)
	assert.Equal(t, constants.RoleOwner, owner.Role)
}

func TestJoinRequiresLogin(t *testing.T) {
	s := newSite(t)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", nil)

	resp := s.post(s.client(), communityPath(community, "join/"), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/accounts/login/"))
}

func TestFormsRequireCSRFToken(t *testing.T) {
	s := newSite(t)
	s.user("bob", false)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", nil)
	bobClient := s.login("bob")

	// a form posted from another origin carries the cookie but not the token
	resp := s.postRaw(bobClient, communityPath(community, "join/"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = s.postRaw(bobClient, communityPath(community, "join/"), url.Values{"csrf_token": {strings.Repeat("0", 64)}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var count int64
	require.NoError(t, s.db.Model(&models.Membership{}).Where("community_id = ?", community.ID).Count(&count).Error)
	assert.Zero(t, count)

	// the rendered page embeds the token the cookie holds
	resp = s.get(bobClient, communityPath(community, ""))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `name="csrf_token" value="`+s.csrfToken(bobClient)+`"`)

	resp = s.post(bobClient, communityPath(community, "join/"), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestLoginFormRequiresCSRFToken(t *testing.T) {
	s := newSite(t)
	s.user("bob", false)

	c := s.client()
	resp := s.postRaw(c, "/accounts/login/", url.Values{"username": {"bob"}, "password": {testPassword}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.get(c, "/profile/")
	assert.Equal(t, http.StatusFound, resp.StatusCode, "login must not have happened")
}

func TestCommunityGates(t *testing.T) {
	s := newSite(t)
	alice := s.user("alice", false)
	bob := s.user("bob", false)
	lea := s.user("lea", false)
	s.user("root", true)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", alice)
	testutil.AddMember(t, s.db, bob, community, constants.RoleMember)
	testutil.AddMember(t, s.db, lea, community, constants.RoleLeader)

	owner := s.login("alice")
	member := s.login("bob")
	leader := s.login("lea")
	superuser := s.login("root")

	tests := []struct {
		name   string
		client *http.Client
		path   string
		want   int
	}{
		{"owner manage", owner, communityPath(community, "manage/"), http.StatusOK},
		{"owner edit", owner, communityPath(community, "edit/"), http.StatusOK},
		{"leader manage", leader, communityPath(community, "manage/"), http.StatusOK},
		{"leader edit", leader, communityPath(community, "edit/"), http.StatusForbidden},
		{"member manage", member, communityPath(community, "manage/"), http.StatusForbidden},
		{"member edit", member, communityPath(community, "edit/"), http.StatusForbidden},
		{"superuser manage", superuser, communityPath(community, "manage/"), http.StatusOK},
		{"superuser edit", superuser, communityPath(community, "edit/"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.get(tt.client, tt.path)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestChangeRole(t *testing.T) {
	s := newSite(t)
	alice := s.user("alice", false)
	bob := s.user("bob", false)
	carol := s.user("carol", false)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", alice)
	bobMembership := testutil.AddMember(t, s.db, bob, community, constants.RoleMember)
	carolMembership := testutil.AddMember(t, s.db, carol, community, constants.RoleMember)

	owner := s.login("alice")
	resp := s.post(owner, memberPath(community, bobMembership, "change-role"), url.Values{"role": {"admin"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, communityPath(community, "manage/"), resp.Header.Get("Location"))
	assert.Equal(t, constants.RoleAdmin, testutil.Membership(t, s.db, bob.ID, community.ID).Role)

	admin := s.login("bob")

	// admins cannot grant admin or owner
	s.post(admin, memberPath(community, carolMembership, "change-role"), url.Values{"role": {"owner"}})
	assert.Equal(t, constants.RoleMember, testutil.Membership(t, s.db, carol.ID, community.ID).Role)

	s.post(admin, memberPath(community, carolMembership, "change-role"), url.Values{"role": {"leader"}})
	assert.Equal(t, constants.RoleLeader, testutil.Membership(t, s.db, carol.ID, community.ID).Role)

	// nor change their own role
	s.post(admin, memberPath(community, bobMembership, "change-role"), url.Values{"role": {"member"}})
	assert.Equal(t, constants.RoleAdmin, testutil.Membership(t, s.db, bob.ID, community.ID).Role)

	// an unknown role is rejected before reaching the service
	s.post(owner, memberPath(community, carolMembership, "change-role"), url.Values{"role": {"pope"}})
	assert.Equal(t, constants.RoleLeader, testutil.Membership(t, s.db, carol.ID, community.ID).Role)

	// leaders cannot reach the endpoint at all
	leader := s.login("carol")
	resp = s.post(leader, memberPath(community, bobMembership, "change-role"), url.Values{"role": {"member"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRemoveMember(t *testing.T) {
	s := newSite(t)
	alice := s.user("alice", false)
	bob := s.user("bob", false)
	carol := s.user("carol", false)
	dan := s.user("dan", false)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", alice)
	testutil.AddMember(t, s.db, bob, community, constants.RoleLeader)
	carolMembership := testutil.AddMember(t, s.db, carol, community, constants.RoleServiceLeader)
	danMembership := testutil.AddMember(t, s.db, dan, community, constants.RoleMember)
	ownerMembership := testutil.Membership(t, s.db, alice.ID, community.ID)

	leader := s.login("bob")

	s.post(leader, memberPath(community, carolMembership, "remove"), nil)
	assert.NotNil(t, testutil.Membership(t, s.db, carol.ID, community.ID), "leader removed a service leader")

	s.post(leader, memberPath(community, ownerMembership, "remove"), nil)
	assert.NotNil(t, testutil.Membership(t, s.db, alice.ID, community.ID), "leader removed the owner")

	resp := s.post(leader, memberPath(community, danMembership, "remove"), nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Nil(t, testutil.Membership(t, s.db, dan.ID, community.ID))

	owner := s.login("alice")
	s.post(owner, memberPath(community, carolMembership, "remove"), nil)
	assert.Nil(t, testutil.Membership(t, s.db, carol.ID, community.ID))
}

func TestInviteFlow(t *testing.T) {
	s := newSite(t)
	alice := s.user("alice", false)
	erin := s.user("erin", false)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", alice)

	owner := s.login("alice")
	resp := s.post(owner, communityPath(community, "invite/"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	link := inviteLink(t, resp)
	token := strings.TrimPrefix(link, "/invite/accept?token=")

	guest := s.login("erin")
	resp = s.get(guest, link)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, testutil.Membership(t, s.db, erin.ID, community.ID), "GET must not join")

	resp = s.post(guest, "/invite/accept", url.Values{"token": {token}})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	m := testutil.Membership(t, s.db, erin.ID, community.ID)
	require.NotNil(t, m)
	assert.Equal(t, constants.RoleMember, m.Role)
	require.NotNil(t, m.InvitedByID)
	assert.Equal(t, alice.ID, *m.InvitedByID)
}

func TestInviteDiesWithInviterRights(t *testing.T) {
	s := newSite(t)
	alice := s.user("alice", false)
	lea := s.user("lea", false)
	erin := s.user("erin", false)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", alice)
	leaM := testutil.AddMember(t, s.db, lea, community, constants.RoleLeader)

	leader := s.login("lea")
	resp := s.post(leader, communityPath(community, "invite/"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := strings.TrimPrefix(inviteLink(t, resp), "/invite/accept?token=")

	owner := s.login("alice")
	s.post(owner, memberPath(community, leaM, "remove"), nil)
	require.Nil(t, testutil.Membership(t, s.db, lea.ID, community.ID))

	guest := s.login("erin")
	resp = s.post(guest, "/invite/accept", url.Values{"token": {token}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Nil(t, testutil.Membership(t, s.db, erin.ID, community.ID))
}

func TestAdminAccess(t *testing.T) {
	s := newSite(t)
	s.user("bob", false)
	s.user("root", true)

	resp := s.get(s.client(), "/admin/")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/accounts/login/"))

	assert.Equal(t, http.StatusForbidden, s.get(s.login("bob"), "/admin/").StatusCode)

	root := s.login("root")
	for _, path := range []string{"/admin/", "/admin/users/", "/admin/communities/", "/admin/profiles/", "/admin/memberships/", "/admin/tags/"} {
		assert.Equal(t, http.StatusOK, s.get(root, path).StatusCode, path)
	}
}

func TestAdminToggleCommunity(t *testing.T) {
	s := newSite(t)
	s.user("root", true)
	community := testutil.CreateCommunity(t, s.db, "Grace Chapel", "Lisbon", nil)
	root := s.login("root")

	resp := s.post(root, "/admin/communities/"+strconv.FormatUint(uint64(community.ID), 10)+"/toggle-verified/", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	var reloaded models.CommunityProfile
	require.NoError(t, s.db.First(&reloaded, community.ID).Error)
	assert.True(t, reloaded.IsVerified)
}

// inviteLink pulls the invitation path out of the manage page.
func inviteLink(t *testing.T, resp *http.Response) string {
	t.Helper()
	body := readBody(t, resp)
	start := strings.Index(body, "/invite/accept?token=")
	require.NotEqual(t, -1, start, "invite link missing from the manage page")
	end := strings.IndexAny(body[start:], "\"< ")
	require.Positive(t, end)
	return strings.ReplaceAll(body[start:start+end], "&amp;", "&")
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
