// Command chatcli is a terminal client for the ticketflow gateway: it opens
// the chat websocket for a project, answers clarifying questions one at a
// time, and auto-sends the finished interview back to the assistant.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ticketflow/internal/chat"
	"ticketflow/internal/interview"
)

func main() {
	addr := flag.String("addr", "http://localhost:8081", "gateway base URL")
	projectID := flag.String("project", "", "existing project id")
	name := flag.String("name", "", "create a project with this name")
	desc := flag.String("desc", "", "project description when creating")
	user := flag.String("user", "", "value for X-User-ID")
	flag.Parse()

	cli := &client{addr: strings.TrimRight(*addr, "/"), user: *user}

	var p *projectOut
	if *projectID == "" {
		if *name == "" {
			log.Fatal("either -project or -name is required")
		}
		created, err := cli.createProject(*name, *desc)
		if err != nil {
			log.Fatalf("create project: %v", err)
		}
		fmt.Printf("Created project %q (%s)\n", created.Name, created.ID)
		p = created
	} else {
		existing, err := cli.getProject(*projectID)
		if err != nil {
			log.Fatalf("load project: %v", err)
		}
		p = existing
	}

	conn, err := cli.dial(p.ID)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer conn.Close()

	s := &session{conn: conn}
	// A project with no transcript opens with its own idea, so the assistant
	// starts the interview without the user retyping the description.
	empty, err := cli.transcriptEmpty(p.ID)
	if err != nil {
		log.Printf("could not check transcript: %v", err)
	} else if empty {
		s.ideaMsg = interview.ProjectIdeaMessage(p.Name, p.Description)
	}
	go s.readLoop()

	fmt.Println("Describe your project. Commands: /skip, /details <text>, /generate, /quit")
	stdin := bufio.NewScanner(os.Stdin)
	s.prompt()
	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		switch {
		case line == "":
		case line == "/quit":
			return
		case line == "/generate":
			s.send(chat.SkipSentinel)
		case line == "/skip":
			s.skipQuestion()
		case strings.HasPrefix(line, "/details "):
			s.setDetails(strings.TrimPrefix(line, "/details "))
		default:
			s.input(line)
		}
		s.prompt()
	}
}

// session owns the websocket and the interview state. The read loop and the
// stdin loop both touch conv, so everything goes through mu.
type session struct {
	conn    *websocket.Conn
	ideaMsg string
	mu      sync.Mutex
	conv    interview.Conversation
}

func (s *session) readLoop() {
	for {
		var ev chat.Event
		if err := s.conn.ReadJSON(&ev); err != nil {
			log.Fatalf("connection closed: %v", err)
		}
		switch ev.Type {
		case chat.EventReady:
			s.maybeSendIdea()
		case chat.EventTextDelta:
			fmt.Print(ev.Delta)
		case chat.EventToolCall:
			if len(ev.Questions) > 0 {
				s.mu.Lock()
				s.conv.PresentQuestions(ev.Questions)
				s.mu.Unlock()
			} else if ev.Call != nil {
				fmt.Printf("\n[%s...]\n", ev.Call.Name)
			}
		case chat.EventTicketsGenerated:
			fmt.Println("\nI've generated the tickets. Check the board and say if you'd like any changes.")
		case chat.EventError:
			if ev.Error != nil {
				fmt.Printf("\nerror: %s", ev.Error.Message)
				if ev.Error.RetryAfterSeconds > 0 {
					fmt.Printf(" (retry in %ds)", ev.Error.RetryAfterSeconds)
				}
				fmt.Println()
			}
			s.finishTurn()
		case chat.EventComplete:
			fmt.Println()
			s.finishTurn()
		}
	}
}

func (s *session) finishTurn() {
	s.mu.Lock()
	s.conv.TurnInFlight = false
	s.mu.Unlock()
	s.maybeAutoSend()
	s.prompt()
}

// input routes a typed line: an answer while a question is pending, a fresh
// chat message otherwise.
func (s *session) input(line string) {
	s.mu.Lock()
	if s.conv.Session != nil && !s.conv.Session.Done() {
		s.conv.Session.Answer(line)
		s.mu.Unlock()
		s.maybeAutoSend()
		return
	}
	s.mu.Unlock()
	s.send(line)
}

func (s *session) skipQuestion() {
	s.mu.Lock()
	if s.conv.Session != nil {
		s.conv.Session.Skip()
	}
	s.mu.Unlock()
	s.maybeAutoSend()
}

func (s *session) setDetails(text string) {
	s.mu.Lock()
	if s.conv.Session != nil {
		s.conv.Session.SetDetails(text)
	}
	s.mu.Unlock()
}

func (s *session) maybeSendIdea() {
	s.mu.Lock()
	if s.ideaMsg == "" || !s.conv.ShouldSendIdea() {
		s.mu.Unlock()
		return
	}
	s.conv.MarkIdeaSent()
	msg := s.ideaMsg
	s.mu.Unlock()
	fmt.Println("Sending your project idea...")
	s.send(msg)
}

func (s *session) maybeAutoSend() {
	s.mu.Lock()
	if !s.conv.ShouldAutoSend() {
		s.mu.Unlock()
		return
	}
	s.conv.MarkAutoSent()
	msg := s.conv.Session.ComposeMessage()
	s.mu.Unlock()
	fmt.Println("\nSending your answers...")
	s.send(msg)
}

func (s *session) send(content string) {
	s.mu.Lock()
	s.conv.TurnInFlight = true
	s.mu.Unlock()
	err := s.conn.WriteJSON(map[string]string{
		"type":      "send",
		"messageId": uuid.NewString(),
		"content":   content,
	})
	if err != nil {
		log.Fatalf("send: %v", err)
	}
}

func (s *session) prompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conv.TurnInFlight {
		return
	}
	if s.conv.Session != nil {
		if q, ok := s.conv.Session.Current(); ok {
			fmt.Printf("\n%s\n", q.Question)
			for i, opt := range q.Options {
				fmt.Printf("  %d) %s\n", i+1, opt)
			}
			fmt.Print("answer> ")
			return
		}
	}
	fmt.Print("> ")
}

type client struct {
	addr string
	user string
}

type projectOut struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

func (c *client) createProject(name, desc string) (*projectOut, error) {
	body, _ := json.Marshal(map[string]string{"name": name, "description": desc})
	req, err := http.NewRequest(http.MethodPost, c.addr+"/api/projects", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" {
		req.Header.Set("X-User-ID", c.user)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("gateway returned %s", resp.Status)
	}
	var out projectOut
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) getProject(id string) (*projectOut, error) {
	var out projectOut
	if err := c.getJSON("/api/projects/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) transcriptEmpty(projectID string) (bool, error) {
	var out struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := c.getJSON("/api/projects/"+projectID+"/messages", &out); err != nil {
		return false, err
	}
	return len(out.Messages) == 0, nil
}

func (c *client) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.addr+path, nil)
	if err != nil {
		return err
	}
	if c.user != "" {
		req.Header.Set("X-User-ID", c.user)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) dial(projectID string) (*websocket.Conn, error) {
	u, err := url.Parse(c.addr)
	if err != nil {
		return nil, err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	wsURL := fmt.Sprintf("%s://%s/api/projects/%s/chat", scheme, u.Host, projectID)
	header := http.Header{}
	if c.user != "" {
		header.Set("X-User-ID", c.user)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	return conn, err
}
