package seed

import (
	"fmt"
	"strings"
	"unicode"

	"workstation/internal/models"
	"workstation/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	userTypes = []models.UserType{
		models.UserTypeFounder,
		models.UserTypeProfessional,
		models.UserTypeStudent,
		models.UserTypeEnthusiast,
	}
	projectTypes = []models.ProjectType{
		models.ProjectTypeProject,
		models.ProjectTypeIdea,
		models.ProjectTypeVenture,
	}
	stages = []models.ProjectStage{
		models.ProjectStageIdea,
		models.ProjectStagePrototype,
		models.ProjectStageMVP,
		models.ProjectStageGrowth,
		models.ProjectStageMature,
	}
	collaborations = []models.CollaborationType{
		models.CollaborationNone,
		models.CollaborationCoFounders,
		models.CollaborationMentors,
		models.CollaborationInvestors,
		models.CollaborationContributors,
	}
	desiredRoles = []string{"Co-Founder", "Contributor", "Mentor", "Investor", "anything helpful"}
	skillPool    = []string{"Go", "TypeScript", "React", "Postgres", "Redis", "Design", "Marketing", "Sales", "Finance", "DevOps", "ML"}
)

// Factory builds service inputs filled with fake but plausible content.
// Two factories with the same seed produce the same sequence.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Pick returns an index in [0, n).
func (f *Factory) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

// Chance reports true with probability percent/100.
func (f *Factory) Chance(percent int) bool {
	return f.faker.Number(1, 100) <= percent
}

// User builds the input for the i-th generated account.
func (f *Factory) User(i int, password string) service.CreateUserInput {
	first, last := f.faker.FirstName(), f.faker.LastName()
	username := fmt.Sprintf("%s_%s%d", handle(first), handle(last), i)
	return service.CreateUserInput{
		Username:  username,
		Email:     username + "@example.com",
		Password:  password,
		FirstName: first,
		LastName:  last,
		UserType:  userTypes[f.Pick(len(userTypes))],
		Bio:       f.faker.Sentence(12),
		Title:     f.faker.JobTitle(),
		Location:  f.faker.City(),
		Skills:    f.sample(skillPool, 3),
		Interests: []string{f.faker.BuzzWord(), f.faker.BuzzWord()},
	}
}

// Project builds a project input with one to three tags.
func (f *Factory) Project() service.ProjectInput {
	name := f.faker.AppName()
	return service.ProjectInput{
		Title:               name,
		Description:         f.faker.Paragraph(2, 4, 12, " "),
		ShortDescription:    f.faker.Sentence(10),
		ProjectType:         projectTypes[f.Pick(len(projectTypes))],
		Stage:               stages[f.Pick(len(stages))],
		Status:              models.ProjectStatusOpen,
		CollaborationNeeded: collaborations[f.Pick(len(collaborations))],
		Tags:                f.sample(skillPool, 1+f.Pick(3)),
	}
}

// DesiredRole returns free text as a requester would type it.
func (f *Factory) DesiredRole() string {
	return desiredRoles[f.Pick(len(desiredRoles))]
}

// Sentence returns one sentence of n words.
func (f *Factory) Sentence(n int) string {
	return f.faker.Sentence(n)
}

// Thought returns thought text, mentioning mention when it is not empty.
func (f *Factory) Thought(mention string) string {
	text := f.faker.HackerPhrase()
	if mention != "" {
		text = fmt.Sprintf("%s cc @%s", text, mention)
	}
	return text
}

func (f *Factory) sample(pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	picked := make([]string, 0, n)
	seen := make(map[int]bool, n)
	for len(picked) < n {
		i := f.Pick(len(pool))
		if seen[i] {
			continue
		}
		seen[i] = true
		picked = append(picked, pool[i])
	}
	return picked
}

// handle lowercases s and keeps only ASCII letters so usernames stay mentionable.
func handle(s string) string {
	h := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
	if h == "" {
		return "user"
	}
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
