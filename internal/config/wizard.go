package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// validateHTTPURL accepts an absolute http(s) URL. Blank input is allowed
// when optional is set.
func validateHTTPURL(optional bool) promptui.ValidateFunc {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" && optional {
			return nil
		}
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("enter an http(s) URL")
		}
		return nil
	}
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("enter a port between 0 and 65535")
	}
	return nil
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .cgblog.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to cgblog! Let's configure your site.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Content host.
	basePrompt := promptui.Prompt{
		Label:    "Content host base URL",
		Default:  cfg.BaseURL,
		Validate: validateHTTPURL(false),
	}
	baseURL, err := basePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")

	// 2. Identity.
	namePrompt := promptui.Prompt{Label: "Site name", Default: cfg.Name}
	if cfg.Name, err = namePrompt.Run(); err != nil {
		return nil, fmt.Errorf("site name: %w", err)
	}
	logoPrompt := promptui.Prompt{Label: "Logo text", Default: cfg.LogoText}
	if cfg.LogoText, err = logoPrompt.Run(); err != nil {
		return nil, fmt.Errorf("logo text: %w", err)
	}

	// 3. Social links.
	githubPrompt := promptui.Prompt{Label: "GitHub profile URL", Default: cfg.GitHubURL, Validate: validateHTTPURL(true)}
	if cfg.GitHubURL, err = githubPrompt.Run(); err != nil {
		return nil, fmt.Errorf("github url: %w", err)
	}
	linkedinPrompt := promptui.Prompt{Label: "LinkedIn profile URL", Default: cfg.LinkedInURL, Validate: validateHTTPURL(true)}
	if cfg.LinkedInURL, err = linkedinPrompt.Run(); err != nil {
		return nil, fmt.Errorf("linkedin url: %w", err)
	}

	// 4. Resume.
	resumePrompt := promptui.Select{
		Label: "Resume link",
		Items: []string{
			"none   — hide the resume link",
			"url    — link to an external resume",
			"hosted — serve Pages/resume.pdf from the content host when present",
		},
	}
	resumeIdx, _, err := resumePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("resume selection: %w", err)
	}
	switch resumeIdx {
	case 1:
		urlPrompt := promptui.Prompt{Label: "Resume URL", Validate: validateHTTPURL(false)}
		if cfg.ResumeURL, err = urlPrompt.Run(); err != nil {
			return nil, fmt.Errorf("resume url: %w", err)
		}
	case 2:
		cfg.CheckResumeExists = true
	}

	// 5. Home page hero.
	heroPrompt := promptui.Select{
		Label: "Home page hero",
		Items: []string{"animated background", "cover image"},
	}
	heroIdx, _, err := heroPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("hero selection: %w", err)
	}
	cfg.UseCoverImage = heroIdx == 1

	// 6. Port.
	portPrompt := promptui.Prompt{Label: "HTTP port", Default: strconv.Itoa(cfg.Port), Validate: validatePort}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Save to .cgblog.yml.
	if err := cfg.Save(FileName); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", FileName)
	return cfg, nil
}
