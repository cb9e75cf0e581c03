package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadConfig_LegacyEnv(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("IPNURL_MOMO", "https://api.example.com/callback")
	t.Setenv("FRONTEND_URI", "https://app.example.com")

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Database.URI != "mongodb://localhost:27017" {
		t.Errorf("Database.URI = %q", cfg.Database.URI)
	}
	if cfg.Authentication.Token.JWTSecret != "s3cret" {
		t.Errorf("JWTSecret = %q", cfg.Authentication.Token.JWTSecret)
	}
	if cfg.MoMo.IPNURL != "https://api.example.com/callback" {
		t.Errorf("MoMo.IPNURL = %q", cfg.MoMo.IPNURL)
	}
	if cfg.MoMo.RedirectURL != "https://app.example.com/payment/result" {
		t.Errorf("MoMo.RedirectURL = %q", cfg.MoMo.RedirectURL)
	}
	if len(cfg.Server.CORS.AllowOrigins) != 1 || cfg.Server.CORS.AllowOrigins[0] != "https://app.example.com" {
		t.Errorf("CORS.AllowOrigins = %v", cfg.Server.CORS.AllowOrigins)
	}
	if cfg.Booking.DailyLimit != 4 || cfg.Booking.MaxSlotCancels != 2 {
		t.Errorf("booking defaults = %+v", cfg.Booking)
	}
	if cfg.Authentication.Token.AccessTTLMinutes != 60 {
		t.Errorf("AccessTTLMinutes = %d, want 60", cfg.Authentication.Token.AccessTTLMinutes)
	}
}

// Every legacy variable must land on a field; names like CLOUDINARY_* that
// existing deployments still export are simply ignored.
func TestLegacyEnvTargetsExistingFields(t *testing.T) {
	for key := range legacyEnv {
		typ := reflect.TypeOf(Config{})
		for _, part := range strings.Split(key, ".") {
			f, ok := fieldByTag(typ, part)
			if !ok {
				t.Errorf("legacy key %q: no field for %q in %s", key, part, typ.Name())
				break
			}
			typ = f.Type
		}
	}

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CLOUDINARY_API_SECRET", "unused")
	if _, err := ReadConfig(t.TempDir()); err != nil {
		t.Fatalf("ReadConfig() with stray legacy env: %v", err)
	}
}

func fieldByTag(typ reflect.Type, tag string) (reflect.StructField, bool) {
	if typ.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if strings.Split(f.Tag.Get("mapstructure"), ",")[0] == tag {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

func TestReadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
database:
  uri: mongodb://db:27017
  name: clinic
authentication:
  token:
    mode: jwt
    jwt_secret: from-file
booking:
  cutoff_timezone: Asia/Ho_Chi_Minh
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if cfg.Database.Name != "clinic" {
		t.Errorf("Database.Name = %q", cfg.Database.Name)
	}
	if cfg.Booking.CutoffTimezone != "Asia/Ho_Chi_Minh" {
		t.Errorf("CutoffTimezone = %q", cfg.Booking.CutoffTimezone)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid jwt",
			cfg: Config{
				Database:       DatabaseConfig{URI: "mongodb://x"},
				Authentication: AuthenticationConfig{Token: TokenConfig{Mode: "jwt", JWTSecret: "k"}},
			},
		},
		{
			name:    "missing mongo uri",
			cfg:     Config{Authentication: AuthenticationConfig{Token: TokenConfig{Mode: "jwt", JWTSecret: "k"}}},
			wantErr: true,
		},
		{
			name:    "jwt without secret",
			cfg:     Config{Database: DatabaseConfig{URI: "mongodb://x"}},
			wantErr: true,
		},
		{
			name: "local mode from session secret",
			cfg: Config{
				Database:       DatabaseConfig{URI: "mongodb://x"},
				Authentication: AuthenticationConfig{SessionSecret: "abc", Token: TokenConfig{Mode: "local"}},
			},
		},
		{
			name: "unknown mode",
			cfg: Config{
				Database:       DatabaseConfig{URI: "mongodb://x"},
				Authentication: AuthenticationConfig{Token: TokenConfig{Mode: "saml"}},
			},
			wantErr: true,
		},
		{
			name: "bad timezone",
			cfg: Config{
				Database:       DatabaseConfig{URI: "mongodb://x"},
				Authentication: AuthenticationConfig{Token: TokenConfig{JWTSecret: "k"}},
				Booking:        BookingConfig{CutoffTimezone: "Mars/Olympus"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
