package google_tools

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/teemow/gapidemo/internal/config"
	"github.com/teemow/gapidemo/internal/google"
	"github.com/teemow/gapidemo/internal/tools/toolstest"
)

func TestRegisterGoogleTools(t *testing.T) {
	want := []string{"google_get_auth_url", "google_list_accounts", "google_save_auth_code", "google_user_info"}
	for _, readOnly := range []bool{true, false} {
		sc := toolstest.NewServerContext(t, toolstest.Setup{})
		s := toolstest.NewMCPServer()
		if err := RegisterGoogleTools(s, sc, readOnly); err != nil {
			t.Fatal(err)
		}
		if got := toolstest.ToolNames(t, s); !reflect.DeepEqual(got, want) {
			t.Errorf("readOnly=%v: tools = %v, want %v", readOnly, got, want)
		}
	}
}

func TestRegisterGoogleTools_HTTPWithoutAuth(t *testing.T) {
	tests := []struct {
		name        string
		requireAuth bool
		want        []string
	}{
		{name: "anonymous", want: []string{"google_get_auth_url", "google_list_accounts", "google_user_info"}},
		{name: "require auth", requireAuth: true, want: []string{"google_get_auth_url", "google_list_accounts", "google_save_auth_code", "google_user_info"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := toolstest.NewServerContext(t, toolstest.Setup{Transport: config.TransportStreamableHTTP, RequireAuth: tt.requireAuth})
			s := toolstest.NewMCPServer()
			if err := RegisterGoogleTools(s, sc, true); err != nil {
				t.Fatal(err)
			}
			if got := toolstest.ToolNames(t, s); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tools = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetAuthURL_HTTPWithoutAuth(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{Transport: config.TransportStreamableHTTP})
	s := toolstest.NewMCPServer()
	if err := RegisterGoogleTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "google_get_auth_url", map[string]interface{}{"account": "work"})
	if res.IsError || !strings.Contains(res.Text, "gapidemo login --account work") || strings.Contains(res.Text, "google_save_auth_code") {
		t.Errorf("result = %+v", res)
	}
}

func TestGetAuthURL(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{})
	s := toolstest.NewMCPServer()
	if err := RegisterGoogleTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "google_get_auth_url", map[string]interface{}{"account": "work"})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}
	for _, want := range []string{`account "work"`, "https://accounts.google.com/o/oauth2/auth", "client_id=client-id", "access_type=offline"} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("result %q does not contain %q", res.Text, want)
		}
	}
}

func TestGetAuthURL_NoClient(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{OAuthConfig: &oauth2.Config{}})
	s := toolstest.NewMCPServer()
	if err := RegisterGoogleTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "google_get_auth_url", map[string]interface{}{})
	if !res.IsError || !strings.Contains(res.Text, "GOOGLE_CLIENT_ID") {
		t.Errorf("result = %+v", res)
	}
}

func TestSaveAuthCode(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		toolstest.WriteJSON(w, map[string]interface{}{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(tokenServer.Close)

	conf := google.NewOAuthConfig(google.OAuthSettings{ClientID: "client-id", ClientSecret: "secret"})
	conf.Endpoint = oauth2.Endpoint{AuthURL: tokenServer.URL + "/auth", TokenURL: tokenServer.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}

	store := google.NewTokenStore(t.TempDir())
	sc := toolstest.NewServerContext(t, toolstest.Setup{
		TokenProvider: google.NewFileTokenProvider(store, conf),
		OAuthConfig:   conf,
	})
	s := toolstest.NewMCPServer()
	if err := RegisterGoogleTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "google_save_auth_code", map[string]interface{}{"account": "work", "authCode": "good-code"})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}
	tok, err := store.Load("work")
	if err != nil {
		t.Fatalf("token not saved: %v", err)
	}
	if tok.AccessToken != "new-access" || tok.RefreshToken != "new-refresh" {
		t.Errorf("token = %+v", tok)
	}

	res = toolstest.CallTool(t, s, "google_list_accounts", map[string]interface{}{})
	if res.IsError || !strings.Contains(res.Text, `"work"`) {
		t.Errorf("list accounts = %+v", res)
	}

	res = toolstest.CallTool(t, s, "google_save_auth_code", map[string]interface{}{"account": "work", "authCode": "bad-code"})
	if !res.IsError || !strings.Contains(res.Text, "Failed to save authorization code for account work") {
		t.Errorf("result = %+v", res)
	}

	res = toolstest.CallTool(t, s, "google_save_auth_code", map[string]interface{}{})
	if !res.IsError || !strings.Contains(res.Text, "authCode is required") {
		t.Errorf("result = %+v", res)
	}
}

func TestSaveAuthCode_StaticToken(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{Token: "fixed"})
	s := toolstest.NewMCPServer()
	if err := RegisterGoogleTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "google_save_auth_code", map[string]interface{}{"authCode": "code"})
	if !res.IsError || !strings.Contains(res.Text, "fixed access token") {
		t.Errorf("result = %+v", res)
	}
}

func TestUserInfo(t *testing.T) {
	var auth string
	sc := toolstest.NewServerContext(t, toolstest.Setup{
		Token: "tok",
		Servers: map[google.ServiceType]toolstest.Endpoint{
			google.ServiceUserInfo: {Path: "/", Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/oauth2/v2/userinfo" {
					http.NotFound(w, r)
					return
				}
				auth = r.Header.Get("Authorization")
				toolstest.WriteJSON(w, map[string]interface{}{
					"id":             "123",
					"email":          "user@example.com",
					"verified_email": true,
					"name":           "Test User",
					"picture":        "https://example.com/p.png",
				})
			})},
		},
	})
	s := toolstest.NewMCPServer()
	if err := RegisterGoogleTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "google_user_info", map[string]interface{}{})
	if res.IsError {
		t.Fatalf("unexpected error result: %s", res.Text)
	}
	if auth != "Bearer tok" {
		t.Errorf("Authorization = %q", auth)
	}
	for _, want := range []string{`"email": "user@example.com"`, `"verified_email": true`, `"name": "Test User"`} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("result %q does not contain %s", res.Text, want)
		}
	}
}

func TestUserInfo_NoToken(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.Setup{})
	s := toolstest.NewMCPServer()
	if err := RegisterGoogleTools(s, sc, true); err != nil {
		t.Fatal(err)
	}

	res := toolstest.CallTool(t, s, "google_user_info", map[string]interface{}{})
	if !res.IsError || !strings.Contains(res.Text, "google_save_auth_code") {
		t.Errorf("result = %+v", res)
	}
}
