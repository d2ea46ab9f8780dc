// Package server embeds the built-in browser page used to exercise the room
// flow against a running relay.
package server

const testPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Parley Room Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            padding: 10px;
            overflow-y: scroll;
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
        .badge { font-weight: bold; }
        #typing { color: gray; font-style: italic; min-height: 1.2em; }
    </style>
</head>
<body>
    <h1>Parley Room Test</h1>

    <div id="status" class="status disconnected">Disconnected</div>

    <div>
        <input type="text" id="roomInput" placeholder="Room" value="lobby">
        <input type="text" id="aliasInput" placeholder="Alias">
        <button id="connectButton" onclick="toggleConnection()">Join</button>
    </div>

    <div id="messages"></div>
    <div id="typing"></div>

    <div>
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <script>
        let ws = null;
        let connId = '';
        let typingTimer = null;
        const messagesDiv = document.getElementById('messages');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const connectButton = document.getElementById('connectButton');
        const statusDiv = document.getElementById('status');
        const typingDiv = document.getElementById('typing');

        function emit(event, payload) {
            if (!ws || ws.readyState !== WebSocket.OPEN) return;
            ws.send(JSON.stringify({ event: event, payload: payload }));
        }

        function addNotice(text) {
            const el = document.createElement('div');
            el.style.color = 'gray';
            el.innerHTML = '<em>' + text + '</em>';
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function addMessage(envelope) {
            const el = document.createElement('div');
            const own = envelope.sender.id === connId;
            const name = own ? 'You' : envelope.sender.alias;
            el.innerHTML = '<span class="badge" style="color: ' + envelope.color + '">' +
                name + ':</span> ' + envelope.content;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function updateStatus(connected) {
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            messageInput.disabled = !connected;
            sendButton.disabled = !connected;
            connectButton.textContent = connected ? 'Leave' : 'Join';
        }

        function handleFrame(frame) {
            switch (frame.event) {
            case 'connected':
                connId = frame.payload.id;
                emit('join-room', {
                    room: document.getElementById('roomInput').value.trim(),
                    alias: document.getElementById('aliasInput').value.trim()
                });
                addNotice('You joined the conversation');
                break;
            case 'joined-room':
                addNotice(frame.payload + ' joined the conversation');
                break;
            case 'typing':
                typingDiv.textContent = 'Someone is typing...';
                clearTimeout(typingTimer);
                typingTimer = setTimeout(() => { typingDiv.textContent = ''; }, 1000);
                break;
            case 'message-received':
                addMessage(frame.payload);
                break;
            case 'disconnected-user':
                addNotice(frame.payload);
                break;
            }
        }

        function connect() {
            const room = document.getElementById('roomInput').value.trim();
            const alias = document.getElementById('aliasInput').value.trim();
            if (!room || !alias) {
                addNotice('Room and alias are required');
                return;
            }

            const scheme = location.protocol === 'https:' ? 'wss' : 'ws';
            ws = new WebSocket(scheme + '://' + location.host + '/ws?room=' +
                encodeURIComponent(room) + '&alias=' + encodeURIComponent(alias));

            ws.onopen = () => updateStatus(true);
            ws.onmessage = (e) => handleFrame(JSON.parse(e.data));
            ws.onclose = () => { updateStatus(false); ws = null; connId = ''; };
            ws.onerror = () => updateStatus(false);
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.close();
            } else {
                connect();
            }
        }

        function sendMessage() {
            const content = messageInput.value.trim();
            if (!content || !ws || ws.readyState !== WebSocket.OPEN) return;
            emit('send-message', {
                dateCreated: new Date().toISOString(),
                content: content,
                sender: { id: connId, alias: document.getElementById('aliasInput').value.trim() }
            });
            messageInput.value = '';
        }

        messageInput.addEventListener('input', () => emit('typing'));
        messageInput.addEventListener('keypress', (e) => {
            if (e.key === 'Enter') sendMessage();
        });
    </script>
</body>
</html>`
