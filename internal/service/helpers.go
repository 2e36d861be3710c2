package service

import "fmt"

func projectLink(slug string) string {
	return fmt.Sprintf("/projects/%s/", slug)
}
