package cli

import (
	"os"
	"path/filepath"
)

// Paths provides access to the ~/.giztoy/<app> directory structure.
type Paths struct {
	// AppName is the application name
	AppName string

	// HomeDir is the user's home directory
	HomeDir string
}

// NewPaths creates a new Paths instance for the given app
func NewPaths(appName string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{
		AppName: appName,
		HomeDir: home,
	}, nil
}

// BaseDir returns the base giztoy directory (~/.giztoy)
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// AppDir returns the app-specific directory (~/.giztoy/<app>)
func (p *Paths) AppDir() string {
	return filepath.Join(p.BaseDir(), p.AppName)
}

// ConfigFile returns the config file path (~/.giztoy/<app>/config.yaml)
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.AppDir(), DefaultConfigFile)
}

// DataDir returns the default artifact store root (~/.giztoy/<app>/data)
func (p *Paths) DataDir() string {
	return filepath.Join(p.AppDir(), "data")
}

// IndexDir returns the default voice index directory
// (~/.giztoy/<app>/data/index)
func (p *Paths) IndexDir() string {
	return filepath.Join(p.DataDir(), "index")
}

// UploadDir returns the directory uploaded reference recordings are kept in
// (~/.giztoy/<app>/uploads)
func (p *Paths) UploadDir() string {
	return filepath.Join(p.AppDir(), "uploads")
}

// EnsureDir creates dir and its parents.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}

// StoreDir returns the artifact store root for ctx.
func (p *Paths) StoreDir(ctx *Context) string {
	if ctx != nil && ctx.Store != nil && ctx.Store.Dir != "" {
		return ctx.Store.Dir
	}
	return p.DataDir()
}

// VoiceIndexDir returns the voice index directory for ctx.
func (p *Paths) VoiceIndexDir(ctx *Context) string {
	if ctx != nil && ctx.IndexDir != "" {
		return ctx.IndexDir
	}
	return p.IndexDir()
}
