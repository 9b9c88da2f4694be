package portal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/noah-isme/gradesync/internal/models"
)

// Group is a class as listed by the portal search page.
type Group struct {
	ID   int
	Code string
}

// Groups lists the classes visible to the logged-in teacher.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	doc, err := c.fetch(ctx, classSearchPath)
	if err != nil {
		return nil, err
	}
	return parseGroups(doc), nil
}

// GroupCourses lists the students of a class, grouped by course code. A
// class can mix several course sections.
func (c *Client) GroupCourses(ctx context.Context, g Group) ([]models.RosterCourse, error) {
	doc, err := c.fetch(ctx, fmt.Sprintf(classStudentPath, g.ID))
	if err != nil {
		return nil, err
	}
	return parseGroupCourses(doc, g.ID), nil
}

// StudentDetails reads the birth date and contacts of one student.
func (c *Client) StudentDetails(ctx context.Context, portalID int) (*time.Time, []models.Contact, error) {
	doc, err := c.fetch(ctx, fmt.Sprintf(studentInfoPath, portalID))
	if err != nil {
		return nil, nil, err
	}
	born, contacts := parseStudentPage(doc)
	return born, contacts, nil
}

// Roster walks every class and student. Each request goes through the
// client's retry hook.
func (c *Client) Roster(ctx context.Context) ([]models.RosterCourse, error) {
	var groups []Group
	err := c.retry(ctx, "list classes", func(ctx context.Context) error {
		var err error
		groups, err = c.Groups(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	var courses []models.RosterCourse
	for _, g := range groups {
		var found []models.RosterCourse
		err := c.retry(ctx, "list students of "+g.Code, func(ctx context.Context) error {
			var err error
			found, err = c.GroupCourses(ctx, g)
			return err
		})
		if err != nil {
			return nil, err
		}
		c.logger.Info("class listed", zap.String("class", g.Code), zap.Int("courses", len(found)))
		courses = append(courses, found...)
	}

	for ci := range courses {
		for si := range courses[ci].Students {
			st := &courses[ci].Students[si]
			step := fmt.Sprintf("read contacts of %s %s %s", courses[ci].Code, st.GivenName, st.FamilyName)
			err := c.retry(ctx, step, func(ctx context.Context) error {
				born, contacts, err := c.StudentDetails(ctx, st.PortalID)
				if err != nil {
					return err
				}
				st.BirthDate = born
				st.Contacts = contacts
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}
	return courses, nil
}

func parseGroups(doc *goquery.Document) []Group {
	var groups []Group
	doc.Find(`a[href*="classID="]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		q := u.Query()
		id, err := strconv.Atoi(q.Get("classID"))
		if err != nil {
			return
		}
		code := q.Get("className")
		if code == "" {
			code = text(a)
		}
		groups = append(groups, Group{ID: id, Code: code})
	})
	return groups
}

// Student table columns, counted from the cell holding the student link.
const (
	familyNameOffset = 1
	sectionOffset    = 6
	courseCodeOffset = 7
)

func parseGroupCourses(doc *goquery.Document, groupID int) []models.RosterCourse {
	var courses []models.RosterCourse
	index := make(map[string]int)

	doc.Find("tr[data-id]").Each(func(_ int, row *goquery.Selection) {
		id, err := strconv.Atoi(strings.TrimSpace(row.AttrOr("data-id", "")))
		if err != nil {
			return
		}
		cells := row.Find("td")
		link := -1
		cells.EachWithBreak(func(i int, td *goquery.Selection) bool {
			if td.Find("a").Length() > 0 {
				link = i
				return false
			}
			return true
		})
		if link < 0 || cells.Length() <= link+courseCodeOffset {
			return
		}

		code := text(cells.Eq(link + courseCodeOffset))
		if section := text(cells.Eq(link + sectionOffset)); section != "" {
			if n, err := strconv.Atoi(section); err == nil {
				section = fmt.Sprintf("%02d", n)
			}
			code += "-" + section
		}
		if code == "" {
			return
		}

		i, ok := index[code]
		if !ok {
			i = len(courses)
			index[code] = i
			courses = append(courses, models.RosterCourse{GroupID: groupID, Code: code})
		}
		courses[i].Students = append(courses[i].Students, models.RosterStudent{
			PortalID:   id,
			GivenName:  text(cells.Eq(link).Find("a").First()),
			FamilyName: text(cells.Eq(link + familyNameOffset)),
		})
	})
	return courses
}

var frenchMonths = []string{"janv", "févr", "mars", "avr", "mai", "juin", "juil", "août", "sept", "oct", "nov", "déc"}

// parseBirthDate reads dates such as "3 févr. 2007".
func parseBirthDate(s string) *time.Time {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return nil
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil
	}
	month := strings.TrimSuffix(strings.ToLower(fields[1]), ".")
	for i, m := range frenchMonths {
		if m == month {
			born := time.Date(year, time.Month(i+1), day, 0, 0, 0, 0, time.UTC)
			return &born
		}
	}
	return nil
}

const adultNotice = "Student is 18"

func parseStudentPage(doc *goquery.Document) (*time.Time, []models.Contact) {
	var born *time.Time
	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if text(th) != "Date de naissance" {
			return true
		}
		born = parseBirthDate(text(th.NextFiltered("td").Find("span").First()))
		return false
	})

	var contacts []models.Contact
	doc.Find("th").Each(func(_ int, th *goquery.Selection) {
		if text(th) != "Nom" {
			return
		}
		if c, ok := parseContact(th); ok {
			contacts = append(contacts, c)
		}
	})

	if strings.Contains(doc.Text(), adultNotice) {
		allowed := make(map[string]struct{})
		doc.Find("strong").Each(func(_ int, s *goquery.Selection) {
			if name := text(s); name != "" && name != "NONE" {
				allowed[name] = struct{}{}
			}
		})
		kept := contacts[:0]
		for _, c := range contacts {
			if _, ok := allowed[c.FullName]; ok {
				kept = append(kept, c)
			}
		}
		contacts = kept
	}
	return born, contacts
}

// parseContact reads the contact table that starts with the given "Nom" header.
func parseContact(nameHeader *goquery.Selection) (models.Contact, bool) {
	spans := nameHeader.NextFiltered("td").Find("span")
	name := text(spans.Eq(0))
	if name == "" {
		return models.Contact{}, false
	}
	table := nameHeader.Closest("table")

	contact := models.Contact{
		FullName:  name,
		HomePhone: optional(text(field(table, "Domicile"))),
		WorkPhone: optional(text(field(table, "Travail"))),
		CellPhone: optional(text(field(table, "Cellulaire"))),
		Email:     optional(text(field(table, "Courriel").Find("a").First())),
	}
	if relation := text(spans.Eq(1)); relation != "Unknown" {
		contact.Relation = optional(relation)
	}
	if html, err := field(table, "Correspondance").Html(); err == nil {
		contact.Correspondence = strings.Contains(html, "green")
	}
	if n, err := strconv.Atoi(text(field(table, "Priorité de fermeture"))); err == nil {
		contact.Priority = &n
	}
	return contact, true
}

// field returns the cell next to the header whose text contains label.
func field(table *goquery.Selection, label string) *goquery.Selection {
	return table.Find("th").FilterFunction(func(_ int, th *goquery.Selection) bool {
		return strings.Contains(th.Text(), label)
	}).First().NextFiltered("td")
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
