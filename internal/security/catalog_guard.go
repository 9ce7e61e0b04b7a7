// Package security はカタログ通信と表示テキストのセキュリティ機能を提供する。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// allowedSchemes はカタログのベースURLに許可されるスキーム。
var allowedSchemes = []string{"http", "https"}

// privateNetworks は公開カタログとして扱わないネットワーク範囲。
// パッケージ初期化時に1回だけパースする。
var privateNetworks []net.IPNet

func init() {
	cidrs := []string{
		// プライベートIPアドレス (RFC 1918)
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		// ループバック (RFC 1122)
		"127.0.0.0/8",
		// リンクローカル (RFC 3927) - クラウドメタデータIP (169.254.169.254) を含む
		"169.254.0.0/16",
		// カレントネットワーク
		"0.0.0.0/8",
		// IPv6ループバック
		"::1/128",
		// IPv6リンクローカル
		"fe80::/10",
		// IPv6ユニークローカル
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in privateNetworks: %s: %v", cidr, err))
		}
		privateNetworks = append(privateNetworks, *network)
	}
}

// ValidatePublicURL はカタログURLが公開ホストを指しているかを静的に検証する。
// DNS解決は行わない。解決後のアドレスはNewCatalogClientのDialerで検証される。
func ValidatePublicURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateIP(ip) {
			return fmt.Errorf("private IP address: %s", ip.String())
		}
		return nil
	}

	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("private host: %s", host)
	}

	return nil
}

// NewCatalogClient はカタログAPI用のHTTPクライアントを生成する。
//
// ベースURLが公開ホストの場合はsafeurlのクライアントを返す。
// プライベートIP、ループバック、リンクローカル、メタデータIPへの接続は
// DNS解決後にDialerで拒否されるため、リダイレクト先も含めて公開ホストに限定される。
// 許可ポートは80と443、およびベースURLに明示されたポート。
//
// ローカルのモックカタログなど、ベースURL自体がプライベートアドレスの場合は
// タイムアウトのみを設定した通常のクライアントを返す。戻り値のguardedがfalseになる。
func NewCatalogClient(baseURL string, timeout time.Duration) (client *http.Client, guarded bool, err error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, false, fmt.Errorf("invalid catalog base url: %w", err)
	}

	if err := ValidatePublicURL(baseURL); err != nil {
		if !isAllowedScheme(strings.ToLower(parsed.Scheme)) || parsed.Hostname() == "" {
			return nil, false, err
		}
		return &http.Client{Timeout: timeout}, false, nil
	}

	ports := []int{80, 443}
	if p := parsed.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, false, fmt.Errorf("invalid port in catalog base url: %w", err)
		}
		ports = append(ports, port)
	}

	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(ports...).
		Build()

	return safeurl.Client(config).Client, true, nil
}

// isAllowedScheme はURLスキームが許可リストに含まれるかを検証する。
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isPrivateIP はIPアドレスが非公開のネットワーク範囲に含まれるかを検証する。
func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
