package email

// Email templates in HTML format

// BaseTemplate is the base layout for all emails
const BaseTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background-color: #f4f5f7;
            color: #1a1a2e;
        }
        .container {
            max-width: 600px;
            margin: 0 auto;
            padding: 40px 20px;
        }
        .card {
            background: #ffffff;
            border-radius: 12px;
            padding: 32px;
            border: 1px solid #e5e7eb;
        }
        .logo {
            text-align: center;
            margin-bottom: 24px;
        }
        .logo h1 {
            font-size: 28px;
            color: #0d9e6e;
            margin: 0;
        }
        h2 {
            color: #1a1a2e;
            font-size: 24px;
            margin: 0 0 16px;
        }
        p {
            color: #4b5563;
            font-size: 16px;
            line-height: 1.6;
            margin: 0 0 16px;
        }
        .btn {
            display: inline-block;
            background: #0d9e6e;
            color: #ffffff !important;
            text-decoration: none;
            padding: 14px 28px;
            border-radius: 8px;
            font-weight: 600;
        }
        .code {
            font-size: 32px;
            letter-spacing: 8px;
            font-weight: 700;
            color: #0d9e6e;
            text-align: center;
            margin: 24px 0;
        }
        .footer {
            text-align: center;
            margin-top: 24px;
            color: #9ca3af;
            font-size: 13px;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo"><h1>GiftBay</h1></div>
        <div class="card">{{.Content}}</div>
        <div class="footer">GiftBay — trade gift cards for naira, instantly.</div>
    </div>
</body>
</html>
`

// WelcomeTemplate greets a new account
const WelcomeTemplate = `
<h2>Welcome to GiftBay, {{.Name}}!</h2>
<p>Your account and wallet are ready. Submit your first gift card and get paid in naira, or fund friends directly.</p>
{{if .BonusNaira}}<p>We added a welcome bonus of <strong>₦{{.BonusNaira}}</strong> to your wallet to get you started.</p>{{end}}
<p><a class="btn" href="{{.DashboardURL}}">Open your wallet</a></p>
`

// ResetCodeTemplate carries the password reset code
const ResetCodeTemplate = `
<h2>Password reset</h2>
<p>Hi {{.Name}}, use this code to reset your GiftBay password. It expires in 15 minutes.</p>
<div class="code">{{.Code}}</div>
<p>If you didn't request this, you can safely ignore this email.</p>
`

// PayoutUpdateTemplate reports a withdrawal status change
const PayoutUpdateTemplate = `
<h2>Withdrawal update</h2>
<p>Hi {{.Name}},</p>
<p>{{.Message}}</p>
<p><a class="btn" href="{{.WalletURL}}">View your wallet</a></p>
`
