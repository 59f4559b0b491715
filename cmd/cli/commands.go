package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/and161185/newsdesk/internal/config"
	"github.com/and161185/newsdesk/internal/errs"
	"github.com/and161185/newsdesk/internal/model"
	"github.com/and161185/newsdesk/internal/session"
)

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "nd",
		Usage:     "news management client",
		Version:   fmt.Sprintf("%s (%s)", version, buildDate),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional .env file"},
			&cli.StringFlag{Name: "base-url", Usage: "backend API root (overrides NEWSDESK_BASE_URL)"},
			&cli.StringFlag{Name: "session", Usage: "credential storage: file, redis or memory"},
			&cli.StringFlag{Name: "state-dir", Usage: "directory for the file session backend"},
			&cli.StringFlag{Name: "admin-gate", Usage: "admin route policy: legacy or enforce"},
			&cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
		},
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "log in and keep the credential",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
				},
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := cl.flows.Login(c.Context, c.String("username"), c.String("password"))
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cl.out, "logged in as %s (%s)\n", id.Username, id.Role)
					return nil
				}),
			},
			{
				Name:  "register",
				Usage: "create an account and log in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true},
					&cli.StringFlag{Name: "email"},
				},
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := cl.flows.Register(c.Context, c.String("username"), c.String("password"), c.String("email"))
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cl.out, "registered %s (id %d)\n", id.Username, id.ID)
					return nil
				}),
			},
			{
				Name:  "logout",
				Usage: "end the session",
				Action: run(func(c *cli.Context, cl *client) error {
					if err := cl.flows.Logout(c.Context); err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cl.out, "logged out")
					return nil
				}),
			},
			{
				Name:  "whoami",
				Usage: "show the current identity",
				Action: run(func(_ *cli.Context, cl *client) error {
					id := cl.store.Identity()
					if id == nil {
						return errs.ErrNoCredential
					}
					return cl.printJSON(id)
				}),
			},
			{
				Name:   "status",
				Usage:  "show session and connection settings",
				Action: run(status),
			},
			newsCommand(),
			{
				Name:  "categories",
				Usage: "list categories",
				Action: run(func(c *cli.Context, cl *client) error {
					cats, err := cl.api.Categories.List(c.Context)
					if err != nil {
						return err
					}
					return cl.printJSON(cats)
				}),
			},
			summaryCommand(),
			commentsCommand(),
			likesCommand(),
			{
				Name:      "open",
				Usage:     "navigate to an application location and show where the guard lands",
				ArgsUsage: "<path>",
				Action:    run(open),
			},
		},
	}
}

func status(_ *cli.Context, cl *client) error {
	snap := cl.store.Snapshot()
	st := map[string]any{
		"baseUrl":       cl.cfg.BaseURL,
		"session":       cl.cfg.SessionBackend,
		"adminGate":     cl.cfg.AdminGate,
		"authenticated": snap.IsAuthenticated(),
	}
	if cl.cfg.SessionBackend == config.BackendFile {
		st["stateDir"] = cl.cfg.StatePath()
	}
	if snap.Identity != nil {
		st["identity"] = snap.Identity
	}
	if exp, ok := session.CredentialExpiry(snap.Credential); ok {
		st["expiresAt"] = exp.Format(time.RFC3339)
		st["expired"] = time.Now().After(exp)
	}
	return cl.printJSON(st)
}

func open(c *cli.Context, cl *client) error {
	if c.NArg() != 1 {
		return fmt.Errorf("open: want exactly one path")
	}
	r, out, err := cl.nav.Navigate(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	return cl.printJSON(map[string]any{
		"requested": c.Args().First(),
		"decision":  out.Decision.String(),
		"location":  r.FullPath,
		"route":     r.Name,
		"params":    r.Params,
		"title":     cl.title,
	})
}

func argID(c *cli.Context, i int, what string) (int64, error) {
	v, err := strconv.ParseInt(c.Args().Get(i), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("bad %s %q", what, c.Args().Get(i))
	}
	return v, nil
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "page", Usage: "zero-based page"},
		&cli.IntFlag{Name: "size", Usage: "page size"},
	}
}

func pageQuery(c *cli.Context) model.PageQuery {
	return model.PageQuery{Page: c.Int("page"), Size: c.Int("size"), CategoryID: c.Int64("category")}
}

func newsInputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title"},
		&cli.StringFlag{Name: "content"},
		&cli.StringFlag{Name: "source"},
		&cli.StringFlag{Name: "url"},
		&cli.StringFlag{Name: "image"},
		&cli.Int64Flag{Name: "category"},
		&cli.StringFlag{Name: "status", Usage: "DRAFT, PUBLISHED or ARCHIVED"},
	}
}

func newsInput(c *cli.Context) model.NewsInput {
	return model.NewsInput{
		Title:         c.String("title"),
		Content:       c.String("content"),
		SourceWebsite: c.String("source"),
		OriginalURL:   c.String("url"),
		ImageURL:      c.String("image"),
		CategoryID:    c.Int64("category"),
		Status:        c.String("status"),
	}
}

func newsCommand() *cli.Command {
	return &cli.Command{
		Name:  "news",
		Usage: "browse and manage news",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Flags: append(pageFlags(), &cli.Int64Flag{Name: "category"}),
				Action: run(func(c *cli.Context, cl *client) error {
					p, err := cl.api.News.List(c.Context, pageQuery(c))
					if err != nil {
						return err
					}
					return cl.printJSON(p)
				}),
			},
			{
				Name:      "search",
				ArgsUsage: "<keyword>",
				Flags:     pageFlags(),
				Action: run(func(c *cli.Context, cl *client) error {
					q := pageQuery(c)
					q.Keyword = strings.Join(c.Args().Slice(), " ")
					p, err := cl.api.News.Search(c.Context, q)
					if err != nil {
						return err
					}
					return cl.printJSON(p)
				}),
			},
			{
				Name:  "hot",
				Flags: pageFlags(),
				Action: run(func(c *cli.Context, cl *client) error {
					p, err := cl.api.News.Hot(c.Context, pageQuery(c))
					if err != nil {
						return err
					}
					return cl.printJSON(p)
				}),
			},
			{
				Name:  "latest",
				Flags: pageFlags(),
				Action: run(func(c *cli.Context, cl *client) error {
					p, err := cl.api.News.Latest(c.Context, pageQuery(c))
					if err != nil {
						return err
					}
					return cl.printJSON(p)
				}),
			},
			{
				Name:      "get",
				ArgsUsage: "<id>",
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "news id")
					if err != nil {
						return err
					}
					n, err := cl.api.News.Get(c.Context, id)
					if err != nil {
						return err
					}
					return cl.printJSON(n)
				}),
			},
			{
				Name:  "create",
				Flags: newsInputFlags(),
				Action: run(func(c *cli.Context, cl *client) error {
					n, err := cl.api.News.Create(c.Context, newsInput(c))
					if err != nil {
						return err
					}
					return cl.printJSON(n)
				}),
			},
			{
				Name:      "update",
				ArgsUsage: "<id>",
				Flags:     newsInputFlags(),
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "news id")
					if err != nil {
						return err
					}
					n, err := cl.api.News.Update(c.Context, id, newsInput(c))
					if err != nil {
						return err
					}
					return cl.printJSON(n)
				}),
			},
			{
				Name:      "delete",
				ArgsUsage: "<id>",
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "news id")
					if err != nil {
						return err
					}
					if err := cl.api.News.Delete(c.Context, id); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cl.out, "deleted news %d\n", id)
					return nil
				}),
			},
			{
				Name: "stats",
				Action: run(func(c *cli.Context, cl *client) error {
					st, err := cl.api.News.Statistics(c.Context)
					if err != nil {
						return err
					}
					return cl.printJSON(st)
				}),
			},
		},
	}
}

func summaryCommand() *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "read or generate summaries",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				ArgsUsage: "<news id>",
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "news id")
					if err != nil {
						return err
					}
					s, err := cl.api.Summaries.Get(c.Context, id)
					if errs.IsNotFound(err) {
						_, _ = fmt.Fprintln(cl.out, "no summary yet")
						return nil
					}
					if err != nil {
						return err
					}
					return cl.printJSON(s)
				}),
			},
			{
				Name:      "generate",
				ArgsUsage: "<news id>",
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "news id")
					if err != nil {
						return err
					}
					s, err := cl.api.Summaries.Generate(c.Context, id)
					if err != nil {
						return err
					}
					return cl.printJSON(s)
				}),
			},
			{
				Name: "batch",
				Action: run(func(c *cli.Context, cl *client) error {
					res, err := cl.api.Summaries.GenerateBatch(c.Context)
					if err != nil {
						return err
					}
					return cl.printJSON(res)
				}),
			},
		},
	}
}

func commentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "comments",
		Usage: "read and write comments",
		Subcommands: []*cli.Command{
			{
				Name:      "list",
				ArgsUsage: "<news id>",
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "news id")
					if err != nil {
						return err
					}
					cs, err := cl.api.Comments.ForNews(c.Context, id)
					if err != nil {
						return err
					}
					return cl.printJSON(cs)
				}),
			},
			{
				Name:      "add",
				ArgsUsage: "<news id> <text>",
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "news id")
					if err != nil {
						return err
					}
					text := strings.Join(c.Args().Tail(), " ")
					cm, err := cl.api.Comments.Create(c.Context, model.CommentCreateRequest{NewsID: id, Content: text})
					if err != nil {
						return err
					}
					return cl.printJSON(cm)
				}),
			},
			{
				Name:      "delete",
				ArgsUsage: "<comment id>",
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "comment id")
					if err != nil {
						return err
					}
					if err := cl.api.Comments.Delete(c.Context, id); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cl.out, "deleted comment %d\n", id)
					return nil
				}),
			},
			{
				Name:      "count",
				ArgsUsage: "<news id>",
				Action: run(func(c *cli.Context, cl *client) error {
					id, err := argID(c, 0, "news id")
					if err != nil {
						return err
					}
					n, err := cl.api.Comments.Count(c.Context, id)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cl.out, n)
					return nil
				}),
			},
		},
	}
}

func likesCommand() *cli.Command {
	withID := func(fn func(c *cli.Context, cl *client, newsID int64) error) cli.ActionFunc {
		return run(func(c *cli.Context, cl *client) error {
			id, err := argID(c, 0, "news id")
			if err != nil {
				return err
			}
			return fn(c, cl, id)
		})
	}
	return &cli.Command{
		Name:  "likes",
		Usage: "like news",
		Subcommands: []*cli.Command{
			{
				Name:      "like",
				ArgsUsage: "<news id>",
				Action: withID(func(c *cli.Context, cl *client, id int64) error {
					return cl.api.Likes.Like(c.Context, id)
				}),
			},
			{
				Name:      "unlike",
				ArgsUsage: "<news id>",
				Action: withID(func(c *cli.Context, cl *client, id int64) error {
					return cl.api.Likes.Unlike(c.Context, id)
				}),
			},
			{
				Name:      "status",
				ArgsUsage: "<news id>",
				Action: withID(func(c *cli.Context, cl *client, id int64) error {
					liked, err := cl.api.Likes.Status(c.Context, id)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cl.out, liked)
					return nil
				}),
			},
			{
				Name:      "count",
				ArgsUsage: "<news id>",
				Action: withID(func(c *cli.Context, cl *client, id int64) error {
					n, err := cl.api.Likes.Count(c.Context, id)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(cl.out, n)
					return nil
				}),
			},
		},
	}
}
