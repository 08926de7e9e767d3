package types

import (
	"strings"

	"github.com/goccy/go-yaml"
)

// ContainerCredentials authenticates the pull of a job container image.
type ContainerCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ContainerOptions runs a job inside a container.
type ContainerOptions struct {
	Image       string                `json:"image"`
	Credentials *ContainerCredentials `json:"credentials,omitempty"`
	Env         map[string]string     `json:"env,omitempty"`
	Ports       []int                 `json:"ports,omitempty"`
	Volumes     []string              `json:"volumes,omitempty"`
	Options     []string              `json:"options,omitempty"`
}

// Render returns the container block as an ordered mapping.
func (c *ContainerOptions) Render() yaml.MapSlice {
	out := yaml.MapSlice{{Key: "image", Value: c.Image}}
	if c.Credentials != nil {
		out = append(out, yaml.MapItem{Key: "credentials", Value: yaml.MapSlice{
			{Key: "username", Value: c.Credentials.Username},
			{Key: "password", Value: c.Credentials.Password},
		}})
	}
	if len(c.Env) > 0 {
		out = append(out, yaml.MapItem{Key: "env", Value: StringMap(c.Env)})
	}
	if len(c.Ports) > 0 {
		ports := make([]any, len(c.Ports))
		for i, p := range c.Ports {
			ports[i] = p
		}
		out = append(out, yaml.MapItem{Key: "ports", Value: ports})
	}
	out = appendStrings(out, "volumes", c.Volumes)
	out = appendString(out, "options", strings.Join(c.Options, " "))
	return out
}
