package irpipeline

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
)

var(
	// Extensions we pick up when walking a directory. Files named
	// explicitly on the command line are taken whatever they're called.
	FrameExtensions = []string{".raw", ".y16", ".bin", ".zst", ".tif", ".tiff", ".png", ".jpg", ".jpeg"}
)

func isFrameFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range FrameExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// LoadFilesAndDirs expands the args into a list of frame files,
// recursing into directories. A .yaml file replaces the config.
func (c *Config)LoadFilesAndDirs(args ...string) ([]string, error) {
	files := []string{}

	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return files, fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := ioutil.ReadDir(arg)
			if err != nil {
				return files, fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				path := filepath.Join(arg, content.Name())
				if !content.IsDir() && !isFrameFile(path) && !isConfigFile(path) {
					continue
				}
				more, err := c.LoadFilesAndDirs(path)
				if err != nil {
					return files, fmt.Errorf("load %s: %v", arg, err)
				}
				files = append(files, more...)
			}

		case isConfigFile(arg):
			cfg, err := LoadConfig(arg)
			if err != nil {
				return files, err
			}
			*c = cfg
			log.Printf("Loaded base configuration from %s\n", arg)

		default:
			files = append(files, arg)
		}
	}

	return files, nil
}

func isConfigFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}
