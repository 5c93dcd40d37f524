package http

import (
	"fmt"
	"strings"
	"text/template"
)

// Pages are rendered with text/template: stored values are written into
// the markup without escaping.

const baseLayout = `<!DOCTYPE html>
<html lang="ja">
  <head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta http-equiv="X-UA-Compatible" content="ie=edge">
    <title>脆弱性テスト</title>
  </head>
  <body>
    {{template "body" .}}
  </body>
</html>
`

const loginBody = `{{define "body"}}
    <form action="/login" method="post">
      <table>
        <tr>
          <th>ユーザー名</th><td><input type="text" id="username" name="username" required /></td>
        </tr>
        <tr>
          <th>パスワード</th><td><input type="text" id="password" name="password" required /></td>
        </tr>
      </table>
      <div>
        <input type="submit" id="login" name="login" value="ログイン"/>
      </div>
      <div>
        <span id="errors">{{.Error}}</span>
      </div>
    </form>
    <a href="/register">登録</a>
{{end}}`

const registerBody = `{{define "body"}}
    <form action="/register" method="post">
      <table>
        <tr>
          <th>ユーザー名</th><td><input type="text" id="username" name="username" required /></td>
        </tr>
        <tr>
          <th>パスワード</th><td><input type="text" id="password" name="password" required /></td>
        </tr>
        <tr>
          <th>プロフィール</th><td><input type="textarea" id="profile" name="profile" /></td>
        </tr>
      </table>
      <div>
        <input type="submit" id="register" name="register" value="登録"/>
      </div>
      <div>
        <span id="errors">{{.Error}}</span>
      </div>
    </form>
    <div>
      <a href="/login">戻る</a>
    </div>
{{end}}`

const profileBody = `{{define "body"}}
    <table>
      <tr>
        <th>ユーザー名</th><td>{{.Username}}</td>
      </tr>
      <tr>
        <th>プロフィール</th><td>{{.Profile}}</td>
      </tr>
    </table>
{{- if .AllowUpdate}}
    <div>
      <a href="/update">更新</a>
    </div>
{{- end}}
    <form action="/logout" method="post">
      <input type="submit" id="logout" name="logout" value="ログアウト"/>
    </form>
{{end}}`

const updateBody = `{{define "body"}}
    <form action="/update" method="post">
      <table>
        <tr>
            <th>ユーザー名</th><td>{{.Username}}</td>
        </tr>
        <tr>
          <th>パスワード</th><td><input type="text" id="password" name="password" value="{{.Password}}" required /></td>
        </tr>
        <tr>
          <th>プロフィール</th><td><input type="textarea" id="profile" name="profile" value="{{.Profile}}" /></td>
        </tr>
      </table>
      <div>
        <input type="submit" id="register" name="register" value="更新"/>
      </div>
    </form>
    <div>
      <a href="/profile">戻る</a>
    </div>
{{end}}`

type page string

const (
	pageLogin    page = "login"
	pageRegister page = "register"
	pageProfile  page = "profile"
	pageUpdate   page = "update"
)

var pages = map[page]*template.Template{
	pageLogin:    mustPage(pageLogin, loginBody),
	pageRegister: mustPage(pageRegister, registerBody),
	pageProfile:  mustPage(pageProfile, profileBody),
	pageUpdate:   mustPage(pageUpdate, updateBody),
}

func mustPage(name page, body string) *template.Template {
	tmpl := template.Must(template.New(string(name)).Parse(baseLayout))
	return template.Must(tmpl.Parse(body))
}

type formView struct {
	Error string
}

type profileView struct {
	Username    string
	Profile     string
	AllowUpdate bool
}

type updateView struct {
	Username string
	Password string
	Profile  string
}

func renderPage(name page, data any) (string, error) {
	tmpl, ok := pages[name]
	if !ok {
		return "", fmt.Errorf("unknown page %q", name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return sb.String(), nil
}

func loginFailedMessage(username string) string {
	return fmt.Sprintf("ユーザー名(%s)かパスワードが間違っています", username)
}

func duplicateUsernameMessage(username string) string {
	return fmt.Sprintf("ユーザー名(%s)は既に登録されています", username)
}
